package rmi

import (
	"encoding/gob"
	"net"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/ewanas/DFS/errors"
	"github.com/ewanas/DFS/log"
)

// state is the skeleton's lifecycle: Created -> Running -> Stopped,
// Stopped terminal. See SPEC_FULL.md §4.3.
type state int32

const (
	created state = iota
	running
	stopped
)

// streamHeader is the single byte each side of a connection writes
// before it attempts to read anything, so that neither peer blocks
// waiting for a read the other side's write will never unblock.
// SPEC_FULL.md §6 "Stream order".
const streamHeader = byte(0x52)

func writeStreamHeader(w net.Conn) error {
	_, err := w.Write([]byte{streamHeader})
	return err
}

func readStreamHeader(r net.Conn) error {
	var buf [1]byte
	if _, err := r.Read(buf[:]); err != nil {
		return err
	}
	if buf[0] != streamHeader {
		return errors.Str("rmi: bad stream header")
	}
	return nil
}

// maxConcurrentConnections bounds how many connections a Skeleton
// services at once. A slow or stalled peer can only ever hold one of
// these slots, not spawn the process into an unbounded number of
// goroutines.
const maxConcurrentConnections = 64

// Skeleton is the server-side endpoint of the RMI fabric: it accepts
// TCP connections for one remote interface and dispatches each
// invocation, by reflection, to a local implementation.
type Skeleton struct {
	iface   reflect.Type
	implVal reflect.Value

	mu       sync.Mutex
	addr     Address
	listener net.Listener
	st       int32 // atomic state

	acceptorDone chan struct{}
	wg           sync.WaitGroup
	// sem bounds the number of connections served concurrently; acquired
	// before a worker goroutine is spawned and released when it exits.
	sem chan struct{}

	// ListenError is invoked when the acceptor fails for a reason other
	// than a normal stop; the default policy transitions the skeleton
	// to Stopped.
	ListenError func(error)
	// ServiceError is invoked on a worker's protocol-level failure
	// (malformed frame, I/O error before dispatch); the default policy
	// logs and keeps the skeleton serving.
	ServiceError func(error) bool
}

// NewSkeleton creates a skeleton for iface, served by impl, optionally
// pre-bound to addr (the zero Address lets Start assign a port). iface
// must be a remote interface (SPEC_FULL.md §4.2): every method's final
// return value must be error.
func NewSkeleton(iface reflect.Type, impl interface{}, addr Address) (*Skeleton, error) {
	const op = "rmi.NewSkeleton"
	if impl == nil {
		return nil, errors.E(op, errors.InvalidArgument, errors.Str("implementation is nil"))
	}
	if err := ValidateRemoteInterface(iface); err != nil {
		return nil, err
	}
	implVal := reflect.ValueOf(impl)
	if !implVal.Type().Implements(iface) {
		return nil, errors.E(op, errors.InvalidArgument, errors.Errorf("%T does not implement %v", impl, iface))
	}
	s := &Skeleton{
		iface:   iface,
		implVal: implVal,
		addr:    addr,
		st:      int32(created),
		sem:     make(chan struct{}, maxConcurrentConnections),
	}
	s.ListenError = func(err error) {
		log.Error.Printf("rmi: skeleton for %v: listen error: %v", iface, err)
		s.forceStop()
	}
	s.ServiceError = func(err error) bool {
		log.Error.Printf("rmi: skeleton for %v: service error: %v", iface, err)
		return true
	}
	return s, nil
}

func (s *Skeleton) state() state {
	return state(atomic.LoadInt32(&s.st))
}

// Address returns the skeleton's current bind address: as given at
// construction before Start, or the concrete OS-assigned address after.
func (s *Skeleton) Address() Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the listener (assigning a concrete port if the skeleton
// was not given one) and spawns the acceptor goroutine. Concurrent
// Start calls are serialized by mu; only the one legal
// Created->Running transition succeeds, every other caller — whether
// racing a first Start or calling Start again after the skeleton is
// already Running or Stopped — fails with IllegalState.
func (s *Skeleton) Start() error {
	const op = "rmi.Skeleton.Start"
	s.mu.Lock()
	defer s.mu.Unlock()

	if state(s.st) != created {
		return errors.E(op, errors.IllegalState, errors.Str("skeleton already started or stopped"))
	}

	l, err := net.Listen("tcp", s.addr.String())
	if err != nil {
		return errors.E(op, errors.Other, err)
	}
	s.listener = l
	if tcpAddr, ok := l.Addr().(*net.TCPAddr); ok {
		host := s.addr.Host
		if host == "" {
			host = tcpAddr.IP.String()
		}
		s.addr = Address{Host: host, Port: tcpAddr.Port}
	}
	s.acceptorDone = make(chan struct{})
	atomic.StoreInt32(&s.st, int32(running))

	go s.acceptLoop()
	return nil
}

func (s *Skeleton) acceptLoop() {
	defer close(s.acceptorDone)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.state() == stopped {
				return // Expected: stop() closed the listener.
			}
			s.ListenError(err)
			return
		}
		s.sem <- struct{}{} // Blocks the acceptor once maxConcurrentConnections workers are outstanding.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			s.serve(conn)
		}()
	}
}

// Stop marks the skeleton stopped and closes the listener, unblocking
// the acceptor, then waits for the acceptor goroutine to exit.
// Outstanding workers are left to finish on their own. Stop is safe to
// call more than once.
func (s *Skeleton) Stop() {
	s.mu.Lock()
	already := state(s.st) == stopped
	atomic.StoreInt32(&s.st, int32(stopped))
	l := s.listener
	done := s.acceptorDone
	s.mu.Unlock()

	if already || l == nil {
		return
	}
	l.Close()
	<-done
}

func (s *Skeleton) forceStop() {
	s.mu.Lock()
	atomic.StoreInt32(&s.st, int32(stopped))
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l.Close()
	}
}

func (s *Skeleton) serve(conn net.Conn) {
	defer conn.Close()

	if err := writeStreamHeader(conn); err != nil {
		s.ServiceError(errors.E("rmi.Skeleton.serve", errors.RMIException, err))
		return
	}
	if err := readStreamHeader(conn); err != nil {
		s.ServiceError(errors.E("rmi.Skeleton.serve", errors.RMIException, err))
		return
	}

	dec := gob.NewDecoder(conn)
	var req requestFrame
	if err := dec.Decode(&req); err != nil {
		s.ServiceError(errors.E("rmi.Skeleton.serve", errors.RMIException, err))
		return
	}

	resp := s.dispatch(req)

	enc := gob.NewEncoder(conn)
	if err := enc.Encode(resp); err != nil {
		s.ServiceError(errors.E("rmi.Skeleton.serve", errors.RMIException, err))
		return
	}
}

// dispatch resolves req.Method against the served interface and
// invokes it, by reflection, on the implementation. A method lookup
// miss is NotFound wire failure, not a serviceError: it is normal wire
// behavior, same as the method itself returning an error.
func (s *Skeleton) dispatch(req requestFrame) (resp responseFrame) {
	m, ok := FindIn(s.iface, req.Method)
	if !ok {
		resp.Failure = newWireFailure(errors.E("rmi.Skeleton.dispatch", errors.NotFound,
			errors.Errorf("no such method: %s", req.Method)))
		return resp
	}

	method := s.implVal.MethodByName(m.Name)
	if !method.IsValid() || method.Type().NumIn() != len(req.Args) {
		resp.Failure = newWireFailure(errors.E("rmi.Skeleton.dispatch", errors.RMIException,
			errors.Errorf("argument count mismatch for %s", m.Name)))
		return resp
	}

	args := make([]reflect.Value, len(req.Args))
	for i, a := range req.Args {
		in := method.Type().In(i)
		if a == nil {
			args[i] = reflect.Zero(in)
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(in) {
			resp.Failure = newWireFailure(errors.E("rmi.Skeleton.dispatch", errors.RMIException,
				errors.Errorf("argument %d of %s: got %v, want %v", i, m.Name, av.Type(), in)))
			return resp
		}
		args[i] = av
	}

	defer func() {
		if r := recover(); r != nil {
			resp = responseFrame{Failure: newWireFailure(errors.E("rmi.Skeleton.dispatch", errors.RMIException,
				errors.Errorf("panic invoking %s: %v", m.Name, r)))}
		}
	}()

	out := method.Call(args)
	errVal := out[len(out)-1]
	if !errVal.IsNil() {
		resp.Failure = newWireFailure(errVal.Interface().(error))
		return resp
	}
	if len(out) > 1 {
		resp.Value = out[0].Interface()
	}
	return resp
}
