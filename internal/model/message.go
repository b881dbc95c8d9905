package model

// Message types
const (
	MessageTypeProgram            = "program"
	MessageTypeCommand            = "command"
	MessageTypeProgramRequest     = "program-request"
	MessageTypeBankProgramRequest = "bank-program-request"
	MessageTypePing               = "ping"
	MessageTypePong               = "pong"
)

// Command names
const (
	CommandSave  = "save"
	CommandLoad  = "load"
	CommandPower = "power"
)

// ProgramMessage carries a resolved Program to one peer.
type ProgramMessage struct {
	Type    string  `json:"type"`
	Program Program `json:"program"`
}

// CommandMessage is a lightweight broadcast that does not carry a full
// program: bank save/load notifications and power toggles.
type CommandMessage struct {
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Bank       int               `json:"bank,omitempty"`
	Transition *TransitionConfig `json:"transition,omitempty"`
	Value      *bool             `json:"value,omitempty"`
}

// PeerMessage is the inbound shape from a synth client. All peer traffic
// is read-only requests; peers never write controller state.
type PeerMessage struct {
	Type       string            `json:"type"`
	SynthID    string            `json:"synthId,omitempty"`
	BankID     int               `json:"bankId,omitempty"`
	Transition *TransitionConfig `json:"transition,omitempty"`
}

func NewProgramMessage(p Program) ProgramMessage {
	return ProgramMessage{Type: MessageTypeProgram, Program: p}
}

func NewPowerCommand(on bool) CommandMessage {
	return CommandMessage{Type: MessageTypeCommand, Name: CommandPower, Value: &on}
}

func NewSaveCommand(bank int) CommandMessage {
	return CommandMessage{Type: MessageTypeCommand, Name: CommandSave, Bank: bank}
}

func NewLoadCommand(bank int, transition TransitionConfig) CommandMessage {
	return CommandMessage{Type: MessageTypeCommand, Name: CommandLoad, Bank: bank, Transition: &transition}
}
