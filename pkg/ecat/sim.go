package ecat

import "sync"

// Sim is an in-memory Shared used by tests and cmd/ tools. SubmitFrame
// is the test/harness entry point that stands in for a real EtherCAT
// frame landing in RX0/RX1; LastAck exposes what was last published to
// TX.
type Sim struct {
	mu      sync.Mutex
	rx0     []byte
	rx1     []byte
	lastAck uint16
	dcTime  uint64
}

// NewSim returns a Sim with empty RX regions and DCCycStartTime 0.
func NewSim() *Sim { return &Sim{} }

// SubmitFrame loads a (header, body) pair into RX1/RX0, as the MAC/PHY
// driver would on frame arrival.
func (s *Sim) SubmitFrame(header, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rx1 = append([]byte(nil), header...)
	s.rx0 = append([]byte(nil), body...)
}

// SetDCCycStartTime sets the value the next DCCycStartTime() call
// returns, standing in for the distributed-clock register.
func (s *Sim) SetDCCycStartTime(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dcTime = v
}

func (s *Sim) ReadRX0() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.rx0...)
}

func (s *Sim) ReadRX1() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.rx1...)
}

func (s *Sim) WriteTX(ack uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAck = ack
}

func (s *Sim) DCCycStartTime() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dcTime
}

// LastAck returns the most recently published ack word.
func (s *Sim) LastAck() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAck
}
