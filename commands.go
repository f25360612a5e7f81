package st7305

import "time"

// ST7305 command opcodes, per datasheet.
const (
	cmdSleepIn             byte = 0x10
	cmdSleepOut            byte = 0x11
	cmdDisplayInversionOn  byte = 0x21
	cmdDisplayOff          byte = 0x28
	cmdDisplayOn           byte = 0x29
	cmdColumnAddressSet    byte = 0x2A
	cmdRowAddressSet       byte = 0x2B
	cmdMemoryWrite         byte = 0x2C
	cmdTearingEffectOn     byte = 0x35
	cmdMemoryAccessControl byte = 0x36
	cmdHighPowerMode       byte = 0x38
	cmdLowPowerMode        byte = 0x39
	cmdDataFormatSelect    byte = 0x3A
	cmdGateTiming          byte = 0x62
	cmdGateLineSetting     byte = 0xB0
	cmdFrameRateControl    byte = 0xB2
	cmdGateEQHighPower     byte = 0xB3
	cmdGateEQLowPower      byte = 0xB4
	cmdSourceEQEnable      byte = 0xB7
	cmdPanelSetting        byte = 0xB8
	cmdGammaModeSetting    byte = 0xB9
	cmdGateVoltage         byte = 0xC0
	cmdVSHPSetting         byte = 0xC1
	cmdVSLPSetting         byte = 0xC2
	cmdVSHNSetting         byte = 0xC4
	cmdVSLNSetting         byte = 0xC5
	cmdSourceVoltageSelect byte = 0xC9
	cmdAutoPowerDown       byte = 0xD0
	cmdBoosterEnable       byte = 0xD1
	cmdNVMLoadControl      byte = 0xD6
	cmdOSCSetting          byte = 0xD8
)

// wakeDelay is the mandatory wait after sleep-out before the controller
// accepts further commands.
const wakeDelay = 120 * time.Millisecond

// command is one opcode with its parameter bytes and an optional settle
// delay after the write.
type command struct {
	op    byte
	args  []byte
	delay time.Duration
}

// initSequence returns the power-up command sequence for a panel. Values
// come from the Waveshare reference driver; only the gate-line count and
// the address window vary per panel.
func initSequence(g Geometry) []command {
	return []command{
		{op: cmdNVMLoadControl, args: []byte{0x17, 0x02}},
		{op: cmdBoosterEnable, args: []byte{0x01}},
		{op: cmdGateVoltage, args: []byte{0x11, 0x04}},
		{op: cmdVSHPSetting, args: []byte{0x69, 0x69, 0x69, 0x69}},
		{op: cmdVSLPSetting, args: []byte{0x19, 0x19, 0x19, 0x19}},
		{op: cmdVSHNSetting, args: []byte{0x4B, 0x4B, 0x4B, 0x4B}},
		{op: cmdVSLNSetting, args: []byte{0x19, 0x19, 0x19, 0x19}},
		{op: cmdOSCSetting, args: []byte{0x80, 0xE9}},
		{op: cmdFrameRateControl, args: []byte{0x02}},
		{op: cmdGateEQHighPower, args: []byte{0xE5, 0xF6, 0x05, 0x46, 0x77, 0x77, 0x77, 0x77, 0x76, 0x45}},
		{op: cmdGateEQLowPower, args: []byte{0x05, 0x46, 0x77, 0x77, 0x77, 0x77, 0x76, 0x45}},
		{op: cmdGateTiming, args: []byte{0x32, 0x03, 0x1F}},
		{op: cmdSourceEQEnable, args: []byte{0x13}},
		{op: cmdGateLineSetting, args: []byte{g.GateLines}},
		{op: cmdSleepOut, delay: 200 * time.Millisecond},
		{op: cmdSourceVoltageSelect, args: []byte{0x00}},
		{op: cmdMemoryAccessControl, args: []byte{0x48}},
		{op: cmdDataFormatSelect, args: []byte{0x11}},
		{op: cmdGammaModeSetting, args: []byte{0x20}},
		{op: cmdPanelSetting, args: []byte{0x29}},
		{op: cmdDisplayInversionOn},
		{op: cmdColumnAddressSet, args: []byte{g.ColStart, g.ColEnd}},
		{op: cmdRowAddressSet, args: []byte{g.RowStart, g.RowEnd}},
		{op: cmdTearingEffectOn, args: []byte{0x00}},
		{op: cmdAutoPowerDown, args: []byte{0xFF}},
		{op: cmdHighPowerMode},
		{op: cmdDisplayOn},
	}
}
