package zerodha

import (
	"sync"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// instrumentMapper manages bidirectional mapping between symbols and tokens
type instrumentMapper struct {
	symbolToToken map[string]uint32
	tokenToSymbol map[uint32]string
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]uint32),
		tokenToSymbol: make(map[uint32]string),
	}
}

// load adds every instrument of an exchange dump
func (im *instrumentMapper) load(instruments kiteconnect.Instruments) {
	for _, inst := range instruments {
		im.addMapping(inst.Tradingsymbol, uint32(inst.InstrumentToken))
	}
}

func (im *instrumentMapper) addMapping(symbol string, token uint32) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[symbol] = token
	im.tokenToSymbol[token] = symbol
}

func (im *instrumentMapper) getToken(symbol string) (uint32, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[symbol]
	return token, exists
}

func (im *instrumentMapper) getSymbol(token uint32) string {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.tokenToSymbol[token]
}

// resolve maps symbols to tokens and reports the ones it does not know
func (im *instrumentMapper) resolve(symbols []string) (tokens []uint32, missing []string) {
	for _, s := range symbols {
		if t, ok := im.getToken(s); ok {
			tokens = append(tokens, t)
		} else {
			missing = append(missing, s)
		}
	}
	return tokens, missing
}

func (im *instrumentMapper) size() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.symbolToToken)
}
