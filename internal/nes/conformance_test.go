package nes

import (
	"encoding/json"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/nevisdale/nestic/internal/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/maps"
)

// Test_BusStep_Nestest runs nestest.nes in automation mode and compares the
// registers before every instruction with the reference log.
func Test_BusStep_Nestest(t *testing.T) {
	nestestBinFile := os.Getenv("NESTEST_BIN")
	nestestLogFile := os.Getenv("NESTEST_LOG")
	if nestestBinFile == "" || nestestLogFile == "" {
		t.Skip("skipping test because NESTEST_BIN or NESTEST_LOG is not set")
		return
	}

	c, err := cart.NewCartFromFile(nestestBinFile)
	require.NoError(t, err, "failed to load nestest rom")

	bus := NewBus()
	bus.LoadCart(c)
	// nestest (all tests) starts at 0xC000
	bus.cpu.pc = 0xC000

	re := regexp.MustCompile(`^([A-F0-9]{4}).+A:([A-F0-9]{2}) X:([A-F0-9]{2}) Y:([A-F0-9]{2}) P:([A-F0-9]{2}) SP:([A-F0-9]{2}).+CYC:(\d+)`)
	parseHex := func(s string, bits int) uint64 {
		v, err := strconv.ParseUint(s, 16, bits)
		require.NoError(t, err)
		return v
	}
	parseLogLine := func(s string) CPUState {
		match := re.FindStringSubmatch(s)
		require.NotNil(t, match, "unexpected log line %q", s)

		cyc, err := strconv.ParseUint(match[7], 10, 64)
		require.NoError(t, err)
		return CPUState{
			PC:     uint16(parseHex(match[1], 16)),
			A:      uint8(parseHex(match[2], 8)),
			X:      uint8(parseHex(match[3], 8)),
			Y:      uint8(parseHex(match[4], 8)),
			P:      uint8(parseHex(match[5], 8)),
			SP:     uint8(parseHex(match[6], 8)),
			Cycles: cyc,
		}
	}

	logFileData, err := os.ReadFile(nestestLogFile)
	require.NoError(t, err, "failed to open nestest log file")

	for i, line := range strings.Split(string(logFileData), "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) == 0 {
			continue
		}
		expected := parseLogLine(line)
		if !assert.Equal(t, expected, bus.CPUState(), "failed at instruction %s:%d", nestestLogFile, i+1) {
			return
		}
		bus.Step()
	}
}

// Test_CPU_SingleStepTest runs the SingleStepTests 6502 json files, one per
// opcode, against a flat memory.
func Test_CPU_SingleStepTest(t *testing.T) {
	t.Parallel()

	type cpuState struct {
		PC uint16 `json:"pc"`
		S  uint8  `json:"s"`
		A  uint8  `json:"a"`
		X  uint8  `json:"x"`
		Y  uint8  `json:"y"`
		P  uint8  `json:"p"`

		// slice of elements where
		// element[0] is address
		// element[1] is value
		RAM [][]uint16 `json:"ram"`
	}

	type testInstance struct {
		Name    string   `json:"name"`
		Initial cpuState `json:"initial"`
		Final   cpuState `json:"final"`

		// slice of elements where
		// element[0] is address
		// element[1] is value
		// element[2] is operation (read/write)
		Cycles [][]any `json:"cycles"`
	}

	dir := os.Getenv("SINGLE_STEP_TEST_DIR")
	if dir == "" {
		t.Skip("skipping test because SINGLE_STEP_TEST_DIR is not set")
		return
	}

	files, err := os.ReadDir(dir)
	require.NoError(t, err)

	mem := newStepMem(t)
	doTest := func(t *testing.T, test testInstance) {
		// init memory
		mem.reset(t)
		for _, addrVal := range test.Initial.RAM {
			mem.data[addrVal[0]] = uint8(addrVal[1])
		}
		for _, cyc := range test.Cycles {
			op := cyc[2].(string)
			addr := uint16(cyc[0].(float64))
			data := uint8(cyc[1].(float64))
			mem.allow(op, addr, data)
		}

		// init CPU
		cpu := NewCPU(mem)
		cpu.pc = test.Initial.PC
		cpu.sp = test.Initial.S
		cpu.a = test.Initial.A
		cpu.x = test.Initial.X
		cpu.y = test.Initial.Y
		cpu.p = test.Initial.P

		cycles := cpu.Step()

		expected := CPUState{PC: test.Final.PC, SP: test.Final.S, A: test.Final.A, X: test.Final.X, Y: test.Final.Y, P: test.Final.P}
		actual := cpu.State()
		actual.Cycles = 0
		require.Equal(t, expected, actual, "%s", test.Name)
		require.Equal(t, len(test.Cycles), cycles, "%s: cycles", test.Name)

		for _, addrVal := range test.Final.RAM {
			require.Equal(t, uint8(addrVal[1]), mem.data[addrVal[0]], "%s: memory at %04X", test.Name, addrVal[0])
		}
	}

	var tests []testInstance
	for _, file := range files {
		opcode, err := strconv.ParseUint(path.Base(file.Name())[:2], 16, 8)
		require.NoError(t, err, "failed to parse opcode from file name %s", file.Name())

		fileData, err := os.ReadFile(path.Join(dir, file.Name()))
		require.NoError(t, err)

		tests = tests[:0]
		require.NoError(t, json.Unmarshal(fileData, &tests), "failed to unmarshal file %s", file.Name())

		t.Run(file.Name(), func(t *testing.T) {
			if instrs[opcode].op == opXXX {
				t.Skipf("skipping test for opcode %02X because it has no defined effect", opcode)
				return
			}
			for _, test := range tests {
				doTest(t, test)
			}
		})
	}
}

// stepMem is a flat memory failing the test on any write the reference
// cycle list does not contain.
type stepMem struct {
	t       *testing.T
	data    []uint8
	allowed map[uint32]struct{}
}

func newStepMem(t *testing.T) *stepMem {
	return &stepMem{
		t:       t,
		data:    make([]uint8, 0x10000),
		allowed: make(map[uint32]struct{}),
	}
}

func (m *stepMem) key(addr uint16, data uint8) uint32 {
	return uint32(addr) | uint32(data)<<16
}

func (m *stepMem) allow(op string, addr uint16, data uint8) {
	if op != "write" {
		return
	}
	m.allowed[m.key(addr, data)] = struct{}{}
}

func (m *stepMem) reset(t *testing.T) {
	m.t = t
	for i := range m.data {
		m.data[i] = 0
	}
	maps.Clear(m.allowed)
}

func (m *stepMem) Read8(addr uint16) uint8 {
	// do not check because read does not change memory
	return m.data[addr]
}

func (m *stepMem) Write8(addr uint16, data uint8) {
	if _, ok := m.allowed[m.key(addr, data)]; !ok {
		m.t.Fatalf("not allowed write to address %04X with value %02X", addr, data)
	}
	m.data[addr] = data
}
