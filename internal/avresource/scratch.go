package avresource

import "github.com/asticode/go-astiav"

// FrameScratch is a reusable *astiav.Frame owned by a single worker
// loop: allocated once, Unref'd after each iteration so its buffers
// can be reused for the next SendPacket/ReceiveFrame or
// SendFrame/ReceivePacket round trip, and Freed once on worker
// teardown.
type FrameScratch struct {
	frame  *astiav.Frame
	closed bool
}

// NewFrameScratch allocates a fresh scratch frame.
func NewFrameScratch() *FrameScratch {
	return &FrameScratch{frame: astiav.AllocFrame()}
}

// Raw returns the underlying frame for passing into codec/scaler/
// resampler calls.
func (f *FrameScratch) Raw() (*astiav.Frame, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.frame, nil
}

// Unref releases the frame's buffer references without freeing the
// frame struct itself, so it's ready for the next decode/encode
// iteration.
func (f *FrameScratch) Unref() {
	if f.closed {
		return
	}
	f.frame.Unref()
}

// Close frees the underlying frame. Safe to call more than once.
func (f *FrameScratch) Close() {
	if f.closed {
		return
	}
	f.closed = true
	if f.frame != nil {
		f.frame.Free()
		f.frame = nil
	}
}

// PacketScratch is the packet analogue of FrameScratch.
type PacketScratch struct {
	pkt    *astiav.Packet
	closed bool
}

// NewPacketScratch allocates a fresh scratch packet.
func NewPacketScratch() *PacketScratch {
	return &PacketScratch{pkt: astiav.AllocPacket()}
}

// Raw returns the underlying packet.
func (p *PacketScratch) Raw() (*astiav.Packet, error) {
	if p.closed {
		return nil, ErrClosed
	}
	return p.pkt, nil
}

// Unref releases the packet's buffer reference, ready for reuse.
func (p *PacketScratch) Unref() {
	if p.closed {
		return
	}
	p.pkt.Unref()
}

// Close frees the underlying packet. Safe to call more than once.
func (p *PacketScratch) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.pkt != nil {
		p.pkt.Free()
		p.pkt = nil
	}
}
