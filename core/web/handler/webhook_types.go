package handler

type HeliusData struct {
	Description      string             `json:"description"`
	Fee              int                `json:"fee"`
	FeePayer         string             `json:"feePayer"`
	Instructions     []InstructionsData `json:"instructions"`
	Signature        string             `json:"signature"`
	Slot             int                `json:"slot"`
	Source           string             `json:"source"`
	Timestamp        int                `json:"timestamp"`
	TransactionError interface{}        `json:"transactionError"`
	Type             string             `json:"type"`
}

type InstructionsData struct {
	Accounts          []string                `json:"accounts"`
	Data              string                  `json:"data"`
	InnerInstructions []InnerInstructionsData `json:"innerInstructions"`
	ProgramID         string                  `json:"programId"`
}

type InnerInstructionsData struct {
	Accounts  []string `json:"accounts"`
	Data      string   `json:"data"`
	ProgramID string   `json:"programId"`
}
