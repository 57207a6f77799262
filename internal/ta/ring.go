package ta

// FloatRing is a fixed-capacity ring of float64. Once full, Push overwrites
// the oldest value.
type FloatRing struct {
	buf   []float64
	len   int
	start int
}

func NewFloatRing(capacity int) *FloatRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &FloatRing{buf: make([]float64, capacity)}
}

// Push appends v and returns the value it evicted, if any.
func (r *FloatRing) Push(v float64) (evicted float64, ok bool) {
	c := len(r.buf)
	if r.len < c {
		r.buf[(r.start+r.len)%c] = v
		r.len++
		return 0, false
	}
	evicted = r.buf[r.start]
	r.buf[r.start] = v
	r.start = (r.start + 1) % c
	return evicted, true
}

// Get returns the i-th oldest value.
func (r *FloatRing) Get(i int) (float64, bool) {
	if i < 0 || i >= r.len {
		return 0, false
	}
	return r.buf[(r.start+i)%len(r.buf)], true
}

// Oldest is Get(0).
func (r *FloatRing) Oldest() (float64, bool) { return r.Get(0) }

func (r *FloatRing) Len() int   { return r.len }
func (r *FloatRing) Full() bool { return r.len == len(r.buf) }

func (r *FloatRing) Reset() {
	r.len = 0
	r.start = 0
}

// RollingMean keeps a running sum over the last period values.
type RollingMean struct {
	period int
	ring   *FloatRing
	sum    float64
	pushes int
}

// resyncEvery bounds float drift of the running sum.
const resyncEvery = 1024

func NewRollingMean(period int) *RollingMean {
	if period <= 0 {
		period = 1
	}
	return &RollingMean{period: period, ring: NewFloatRing(period)}
}

func (m *RollingMean) Push(v float64) {
	if old, ok := m.ring.Push(v); ok {
		m.sum -= old
	}
	m.sum += v
	m.pushes++
	if m.pushes%resyncEvery == 0 {
		m.resync()
	}
}

func (m *RollingMean) resync() {
	s := 0.0
	for i := 0; i < m.ring.Len(); i++ {
		v, _ := m.ring.Get(i)
		s += v
	}
	m.sum = s
}

// Value is the mean once period values were pushed.
func (m *RollingMean) Value() (float64, bool) {
	if !m.ring.Full() {
		return 0, false
	}
	return m.sum / float64(m.period), true
}

func (m *RollingMean) Period() int { return m.period }

func (m *RollingMean) Reset() {
	m.ring.Reset()
	m.sum = 0
	m.pushes = 0
}
