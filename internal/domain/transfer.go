package domain

type TransferDirection string

const (
	DirectionOut TransferDirection = "out"
	DirectionIn  TransferDirection = "in"
)
