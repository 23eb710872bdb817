package msg

import "testing"

func TestTagString(t *testing.T) {
	cases := map[Tag]string{
		TagFrame:  "FRAME",
		TagPacket: "PACKET",
		TagSeek:   "SEEK",
		TagInfo:   "INFO",
		TagStart:  "START",
		TagStop:   "STOP",
		TagSync:   "SYNC",
	}
	for tag, want := range cases {
		if got := tag.String(); got != want {
			t.Fatalf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}

func TestFreeReleasesFramePlanes(t *testing.T) {
	f := &Frame{PTS: 1000, Planes: [][]byte{make([]byte, 16), make([]byte, 16)}}
	Free(NewFrame(f))
	if f.Planes != nil {
		t.Fatalf("expected planes cleared after Free, got %v", f.Planes)
	}
}

func TestFreeReleasesPacketPayload(t *testing.T) {
	p := &Packet{Payload: make([]byte, 32), PTS: 500}
	Free(NewPacket(p))
	if p.Payload != nil {
		t.Fatalf("expected payload cleared after Free, got %v", p.Payload)
	}
}

func TestFreeNilSafe(t *testing.T) {
	Free(NewSeek(123))
	Free(NewStart())
	Free(NewStop())
	Free(NewSync())
	Free(Message{Tag: TagFrame})
	Free(Message{Tag: TagPacket})
}

func TestConstructors(t *testing.T) {
	if m := NewSeek(42); m.Tag != TagSeek || m.SeekTS != 42 {
		t.Fatalf("unexpected seek message: %+v", m)
	}
	info := &Info{Width: 1920, Height: 1080}
	if m := NewInfo(info); m.Tag != TagInfo || m.Info != info {
		t.Fatalf("unexpected info message: %+v", m)
	}
	if m := NewStart(); m.Tag != TagStart {
		t.Fatalf("unexpected start message: %+v", m)
	}
	if m := NewStop(); m.Tag != TagStop {
		t.Fatalf("unexpected stop message: %+v", m)
	}
	if m := NewSync(); m.Tag != TagSync {
		t.Fatalf("unexpected sync message: %+v", m)
	}
}
