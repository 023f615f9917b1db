package debug

import (
	"fmt"
	"sync"
)

// Breakpoint represents a breakpoint in the debugger, keyed on a flat SMP address
// (the SPC700 has no bank register, unlike the host repo's original banked CPU).
type Breakpoint struct {
	Address  uint16
	Enabled  bool
	HitCount int
}

// WatchExpression represents a watch expression to monitor.
type WatchExpression struct {
	Expression string
	Value      interface{}
	LastValue  interface{}
}

// Debugger is a breakpoint/watch/call-stack debugger for the SMP interpreter.
type Debugger struct {
	breakpoints   map[string]*Breakpoint
	breakpointsMu sync.RWMutex

	watches   []*WatchExpression
	watchesMu sync.RWMutex

	paused    bool
	stepping  bool
	stepCount int
	stateMu   sync.RWMutex

	callStack []CallFrame
	stackMu   sync.RWMutex
}

// CallFrame represents a JSR/CALL return point.
type CallFrame struct {
	ReturnAddress uint16
	Label         string
}

// NewDebugger creates a new debugger instance.
func NewDebugger() *Debugger {
	return &Debugger{
		breakpoints: make(map[string]*Breakpoint),
		watches:     make([]*WatchExpression, 0),
		callStack:   make([]CallFrame, 0),
	}
}

// SetBreakpoint sets a breakpoint at the given SMP address.
func (d *Debugger) SetBreakpoint(address uint16) string {
	d.breakpointsMu.Lock()
	defer d.breakpointsMu.Unlock()

	key := fmt.Sprintf("%04X", address)
	d.breakpoints[key] = &Breakpoint{Address: address, Enabled: true}
	return key
}

// RemoveBreakpoint removes a breakpoint.
func (d *Debugger) RemoveBreakpoint(key string) bool {
	d.breakpointsMu.Lock()
	defer d.breakpointsMu.Unlock()

	if _, exists := d.breakpoints[key]; exists {
		delete(d.breakpoints, key)
		return true
	}
	return false
}

// GetBreakpoint returns a breakpoint by key.
func (d *Debugger) GetBreakpoint(key string) (*Breakpoint, bool) {
	d.breakpointsMu.RLock()
	defer d.breakpointsMu.RUnlock()
	bp, exists := d.breakpoints[key]
	return bp, exists
}

// GetAllBreakpoints returns all breakpoints.
func (d *Debugger) GetAllBreakpoints() map[string]*Breakpoint {
	d.breakpointsMu.RLock()
	defer d.breakpointsMu.RUnlock()

	result := make(map[string]*Breakpoint)
	for k, v := range d.breakpoints {
		result[k] = v
	}
	return result
}

// CheckBreakpoint reports whether execution should break at address, bumping HitCount.
func (d *Debugger) CheckBreakpoint(address uint16) bool {
	d.breakpointsMu.RLock()
	defer d.breakpointsMu.RUnlock()

	key := fmt.Sprintf("%04X", address)
	bp, exists := d.breakpoints[key]
	if exists && bp.Enabled {
		bp.HitCount++
		return true
	}
	return false
}

// EnableBreakpoint enables a breakpoint.
func (d *Debugger) EnableBreakpoint(key string) bool {
	d.breakpointsMu.Lock()
	defer d.breakpointsMu.Unlock()
	if bp, exists := d.breakpoints[key]; exists {
		bp.Enabled = true
		return true
	}
	return false
}

// DisableBreakpoint disables a breakpoint.
func (d *Debugger) DisableBreakpoint(key string) bool {
	d.breakpointsMu.Lock()
	defer d.breakpointsMu.Unlock()
	if bp, exists := d.breakpoints[key]; exists {
		bp.Enabled = false
		return true
	}
	return false
}

// AddWatch adds a watch expression.
func (d *Debugger) AddWatch(expr string) {
	d.watchesMu.Lock()
	defer d.watchesMu.Unlock()
	d.watches = append(d.watches, &WatchExpression{Expression: expr})
}

// RemoveWatch removes a watch expression by index.
func (d *Debugger) RemoveWatch(index int) bool {
	d.watchesMu.Lock()
	defer d.watchesMu.Unlock()
	if index >= 0 && index < len(d.watches) {
		d.watches = append(d.watches[:index], d.watches[index+1:]...)
		return true
	}
	return false
}

// GetWatches returns all watch expressions.
func (d *Debugger) GetWatches() []*WatchExpression {
	d.watchesMu.RLock()
	defer d.watchesMu.RUnlock()
	result := make([]*WatchExpression, len(d.watches))
	copy(result, d.watches)
	return result
}

// Pause pauses execution.
func (d *Debugger) Pause() {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.paused = true
	d.stepping = false
}

// Resume resumes execution.
func (d *Debugger) Resume() {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.paused = false
	d.stepping = false
}

// Step arms single-step mode for count instructions.
func (d *Debugger) Step(count int) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.stepping = true
	d.stepCount = count
	d.paused = false
}

// IsPaused reports whether execution is paused.
func (d *Debugger) IsPaused() bool {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.paused
}

// ShouldBreak reports whether execution should break at address (breakpoint or single-step).
func (d *Debugger) ShouldBreak(address uint16) bool {
	d.stateMu.RLock()
	stepping := d.stepping
	stepCount := d.stepCount
	d.stateMu.RUnlock()

	if stepping && stepCount > 0 {
		d.stateMu.Lock()
		d.stepCount--
		if d.stepCount <= 0 {
			d.stepping = false
			d.paused = true
		}
		d.stateMu.Unlock()
		return true
	}

	return d.CheckBreakpoint(address)
}

// PushCallFrame pushes a JSR return point onto the call stack.
func (d *Debugger) PushCallFrame(returnAddress uint16, label string) {
	d.stackMu.Lock()
	defer d.stackMu.Unlock()
	d.callStack = append(d.callStack, CallFrame{ReturnAddress: returnAddress, Label: label})
}

// PopCallFrame pops the most recent call frame.
func (d *Debugger) PopCallFrame() *CallFrame {
	d.stackMu.Lock()
	defer d.stackMu.Unlock()
	if len(d.callStack) == 0 {
		return nil
	}
	frame := d.callStack[len(d.callStack)-1]
	d.callStack = d.callStack[:len(d.callStack)-1]
	return &frame
}

// GetCallStack returns a copy of the current call stack.
func (d *Debugger) GetCallStack() []CallFrame {
	d.stackMu.RLock()
	defer d.stackMu.RUnlock()
	result := make([]CallFrame, len(d.callStack))
	copy(result, d.callStack)
	return result
}

// ClearBreakpoints clears all breakpoints.
func (d *Debugger) ClearBreakpoints() {
	d.breakpointsMu.Lock()
	defer d.breakpointsMu.Unlock()
	d.breakpoints = make(map[string]*Breakpoint)
}

// ClearWatches clears all watch expressions.
func (d *Debugger) ClearWatches() {
	d.watchesMu.Lock()
	defer d.watchesMu.Unlock()
	d.watches = make([]*WatchExpression, 0)
}
