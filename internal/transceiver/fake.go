package transceiver

// Fake is an in-memory Channel implementation for tests and for the
// maintenance shell's self-check command, following the reference pack's
// table-driven fake-client style (poller_test.go/writer_test.go) rather
// than a mock-generation library.
type Fake struct {
	Rx1Queue []uint32
	Rx2Queue []uint32
	Transmitted []uint32

	CtrlRegOK      bool
	LoopbackOK     bool
	LabelFilterOK  bool
}

func (f *Fake) DataReadyRx1() bool { return len(f.Rx1Queue) > 0 }
func (f *Fake) DataReadyRx2() bool { return len(f.Rx2Queue) > 0 }

func (f *Fake) ReadRx1() uint32 {
	if len(f.Rx1Queue) == 0 {
		return 0
	}
	w := f.Rx1Queue[0]
	f.Rx1Queue = f.Rx1Queue[1:]
	return w
}

func (f *Fake) ReadRx2() uint32 {
	if len(f.Rx2Queue) == 0 {
		return 0
	}
	w := f.Rx2Queue[0]
	f.Rx2Queue = f.Rx2Queue[1:]
	return w
}

func (f *Fake) Transmit(word uint32) error {
	f.Transmitted = append(f.Transmitted, word)
	return nil
}

func (f *Fake) LoadCtrlRegister(uint16) bool  { return f.CtrlRegOK }
func (f *Fake) LoopbackTest() bool            { return f.LoopbackOK }
func (f *Fake) SetupLabelFilter([]uint8) bool { return f.LabelFilterOK }
