package engine

// cc7 handles an immediate 7-bit control-change message.
// CC 0..127 populate slots 1..128; the MIDI channel selects the
// universe (channel + universe base). Values are half resolution:
// 0..127 scales to 0..254.
func (e *Engine) cc7(channel, cc, val uint8) {
	e.universe = uint16(channel) + e.cfg.UniverseBase
	e.bufferIndex = channel
	val <<= 1
	e.store.set(e.bufferIndex, uint16(cc), val)
	e.emit()
	if e.debug {
		e.log.Debugf("universe: %d slot %d value %d", e.universe, uint16(cc)+1, val)
	}
}

// cc14 handles a two-phase 14-bit control-change message.
// CC 0..31 carry the MSB, CC 32..65 the LSB (a single on/off bit, set
// by value > 63) for slot (cc mod 32) + channel*32. The frame is only
// transmitted when the LSB arrives.
//
// The universe and buffer index are whatever the last event set them
// to; this mode never recomputes them.
func (e *Engine) cc14(channel, cc, val uint8) {
	if cc > 65 {
		return
	}

	offset := cc % 32
	base := channel * 32
	e.slot = uint16(offset) + uint16(base)
	cur := e.store.get(e.bufferIndex, e.slot)
	if cc > 31 {
		// LSB
		if val > 63 {
			cur |= 0x01
		} else {
			cur &= 0xfe
		}
		e.store.set(e.bufferIndex, e.slot, cur)
		e.emit()
	} else {
		// MSB
		cur &= 0x01
		cur |= val << 1
		e.store.set(e.bufferIndex, e.slot, cur)
	}
	if e.debug {
		e.log.Debugf("universe: %d slot %d value %d", e.universe, e.slot+1, cur)
	}
}

// nrpnAddress recomputes the slot, buffer index and universe from the
// current NRPN parameter. Parameter 16383 lands on buffer index 31,
// slot 511, the last slot the store holds.
func (e *Engine) nrpnAddress() {
	e.slot = e.nrpnParam % 512
	e.bufferIndex = uint8(e.nrpnParam / 512)
	e.universe = uint16(e.bufferIndex) + e.cfg.UniverseBase
}

// nrpn7 handles a 7-bit NRPN control-change message. NRPN parameters
// 0..511 address slots of the first universe, 512..1023 the second,
// and so on. Data entry (CC 6) writes and transmits immediately;
// increment and decrement move the value by one with saturation,
// transmitting only when the value actually changed.
func (e *Engine) nrpn7(_, cc, val uint8) {
	switch cc {
	case ccNRPNLSB:
		e.nrpnParam = (e.nrpnParam & 0x3f80) | uint16(val)
		e.nrpnAddress()
		if e.debug {
			e.log.Debugf("NRPN param: %d universe: %d slot: %d", e.nrpnParam, e.universe, e.slot+1)
		}
	case ccNRPNMSB:
		e.nrpnParam = (e.nrpnParam & 0x7f) | uint16(val)<<7
		e.nrpnAddress()
		if e.debug {
			e.log.Debugf("NRPN param: %d universe: %d slot: %d", e.nrpnParam, e.universe, e.slot+1)
		}
	case ccDataMSB:
		e.nrpnValue = val << 1
		e.store.set(e.bufferIndex, e.slot, e.nrpnValue)
		e.emit()
		if e.debug {
			e.log.Debugf("NRPN param: %d universe: %d slot: %d val: %d", e.nrpnParam, e.universe, e.slot+1, e.nrpnValue)
		}
	case ccInc:
		if e.nrpnValue < 255 {
			e.nrpnValue++
			e.store.set(e.bufferIndex, e.slot, e.nrpnValue)
			e.emit()
			if e.debug {
				e.log.Debugf("NRPN param: %d universe: %d slot: %d val: %d", e.nrpnParam, e.universe, e.slot+1, e.nrpnValue)
			}
		}
	case ccDec:
		e.slot = e.nrpnParam % 512
		if e.nrpnValue > 0 {
			e.nrpnValue--
			e.store.set(e.bufferIndex, e.slot, e.nrpnValue)
			e.emit()
			if e.debug {
				e.log.Debugf("NRPN param: %d universe: %d slot: %d val: %d", e.nrpnParam, e.universe, e.slot+1, e.nrpnValue)
			}
		}
	}
}

// nrpn14 handles a 14-bit NRPN control-change message. Addressing is
// identical to nrpn7 but the value is built in two phases: data entry
// MSB (CC 6) buffers the top seven bits without transmitting, data
// entry LSB (CC 38) sets the low bit (value > 63) and transmits.
// Increment and decrement mutate the buffered value directly and
// transmit on change.
func (e *Engine) nrpn14(_, cc, val uint8) {
	switch cc {
	case ccNRPNLSB:
		e.nrpnParam = (e.nrpnParam & 0x3f80) | uint16(val)
		e.nrpnAddress()
		if e.debug {
			e.log.Debugf("NRPN param: %d universe: %d slot: %d", e.nrpnParam, e.universe, e.slot+1)
		}
	case ccNRPNMSB:
		e.nrpnParam = (e.nrpnParam & 0x7f) | uint16(val)<<7
		e.nrpnAddress()
		if e.debug {
			e.log.Debugf("NRPN param: %d universe: %d slot: %d", e.nrpnParam, e.universe, e.slot+1)
		}
	case ccDataMSB:
		e.nrpnValue = (e.nrpnValue & 0x01) | val<<1
		if e.debug {
			e.log.Debugf("NRPN param: %d val: %d", e.nrpnParam, e.nrpnValue)
		}
	case ccDataLSB:
		if val > 63 {
			e.nrpnValue |= 0x01
		} else {
			e.nrpnValue &= 0xfe
		}
		e.store.set(e.bufferIndex, e.slot, e.nrpnValue)
		e.emit()
		if e.debug {
			e.log.Debugf("NRPN param: %d universe: %d slot: %d val: %d", e.nrpnParam, e.universe, e.slot+1, e.nrpnValue)
		}
	case ccInc:
		if e.nrpnValue < 255 {
			e.nrpnValue++
			e.store.set(e.bufferIndex, e.slot, e.nrpnValue)
			e.emit()
			if e.debug {
				e.log.Debugf("NRPN param: %d slot: %d val: %d", e.nrpnParam, e.slot+1, e.nrpnValue)
			}
		}
	case ccDec:
		if e.nrpnValue > 0 {
			e.nrpnValue--
			e.store.set(e.bufferIndex, e.slot, e.nrpnValue)
			e.emit()
			if e.debug {
				e.log.Debugf("NRPN param: %d slot: %d val: %d", e.nrpnParam, e.slot+1, e.nrpnValue)
			}
		}
	}
}
