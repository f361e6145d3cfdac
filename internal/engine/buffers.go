package engine

// Frame is the 512-slot data block of a single DMX universe.
type Frame [512]byte

// bufferStore owns one frame per buffer index. Callers guarantee the
// indices: the addressing arithmetic of the resolvers never produces a
// buffer index outside [0,MaxUniverses) or a slot outside [0,512), so
// no bounds are enforced here.
type bufferStore struct {
	frames [MaxUniverses]Frame
}

func (s *bufferStore) get(index uint8, slot uint16) byte {
	return s.frames[index][slot]
}

func (s *bufferStore) set(index uint8, slot uint16, value byte) {
	s.frames[index][slot] = value
}

// blackout zero-fills the frame at the given index.
func (s *bufferStore) blackout(index uint8) {
	s.frames[index] = Frame{}
}

// frame returns the frame at the given index for transmission.
func (s *bufferStore) frame(index uint8) *Frame {
	return &s.frames[index]
}
