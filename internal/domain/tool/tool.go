package tool

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// State 工具生命週期狀態，僅記錄不強制
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Tool 安全工具接口
//
// Init/Start/Stop 可按任意順序、任意次數調用，每次調用輸出一行狀態並更新 State。
type Tool interface {
	ID() string
	Config() Config
	State() State

	Init()
	Start()
	Stop()
}

// 狀態行動詞
const (
	verbInit  = "Initializing"
	verbStart = "Starting"
	verbStop  = "Stopping"
)

// securityTool 四種類別共用的實現，僅以 kind 區分
type securityTool struct {
	id   string
	kind string
	cfg  Config
	out  io.Writer
	log  *zap.Logger

	mu    sync.Mutex
	state State
}

func (t *securityTool) ID() string     { return t.id }
func (t *securityTool) Config() Config { return t.cfg }

func (t *securityTool) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *securityTool) Init()  { t.transition(verbInit, StateInitialized) }
func (t *securityTool) Start() { t.transition(verbStart, StateRunning) }
func (t *securityTool) Stop()  { t.transition(verbStop, StateStopped) }

// transition 輸出狀態行並記錄新狀態
func (t *securityTool) transition(verb string, next State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(t.out, "%s %s tool %s\n", verb, t.kind, t.cfg.Name()); err != nil {
		t.log.Warn("寫入狀態輸出失敗", zap.String("tool_id", t.id), zap.Error(err))
	}

	prev := t.state
	t.state = next

	t.log.Debug("工具狀態變更",
		zap.String("tool_id", t.id),
		zap.String("name", t.cfg.Name()),
		zap.Stringer("category", t.cfg.Category()),
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
	)
}
