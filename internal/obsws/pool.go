package obsws

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andreykaipov/goobs"
)

// Pool はアドレスごとの goobs 接続をキャッシュする。失敗した接続は Drop で破棄し、
// 次の Get で再接続する。
type Pool struct {
	mu       sync.Mutex
	password string
	clients  map[string]*goobs.Client
}

// NewPool は共通パスワード（空なら無認証）で接続する Pool を作る。
func NewPool(password string) *Pool {
	return &Pool{password: strings.TrimSpace(password), clients: map[string]*goobs.Client{}}
}

// Get は addr への接続を返す。未接続なら接続する。
func (p *Pool) Get(addr string) (*goobs.Client, error) {
	addr = NormalizeObsAddr(addr)
	if addr == "" {
		return nil, fmt.Errorf("OBS のアドレスが空です")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[addr]; ok {
		return c, nil
	}
	c, err := openObs(addr, p.password)
	if err != nil {
		return nil, fmt.Errorf("ws://%s への接続に失敗: %w", addr, err)
	}
	p.clients[addr] = c
	return c, nil
}

// Drop は addr の接続を切断して破棄する。
func (p *Pool) Drop(addr string) {
	addr = NormalizeObsAddr(addr)
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[addr]; ok {
		_ = c.Disconnect()
		delete(p.clients, addr)
	}
}

// Close は全接続を切断する。
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		_ = c.Disconnect()
	}
	p.clients = map[string]*goobs.Client{}
}

// openObs はパスワードが空の場合に無認証で接続を試みる。
func openObs(addr, password string) (*goobs.Client, error) {
	if strings.TrimSpace(password) == "" {
		return goobs.New(addr)
	}
	return goobs.New(addr, goobs.WithPassword(password))
}
