package nes

// Button is the index of a button in the serial report of the pad.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	}
	return "???"
}

// Controller is the standard pad. Writing 1 then 0 to $4016 latches the
// buttons, then each read returns the next one, A first. After all eight,
// reads return 1.
type Controller struct {
	buttons [8]bool
	strobe  bool
	index   uint8
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) SetButton(b Button, pressed bool) {
	c.buttons[b] = pressed
}

func (c *Controller) Pressed(b Button) bool {
	return c.buttons[b]
}

func (c *Controller) write(data uint8) {
	c.strobe = data&0x1 != 0
	if c.strobe {
		c.index = 0
	}
}

func (c *Controller) read() uint8 {
	if c.index >= uint8(len(c.buttons)) {
		return 1
	}
	var r uint8
	if c.buttons[c.index] {
		r = 1
	}
	// while strobe is high the pad keeps reporting A
	if !c.strobe {
		c.index++
	}
	return r
}
