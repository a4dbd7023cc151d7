package genesis

import (
	"time"

	"medledger/core/block"
	"medledger/types/ids"
)

const (
	PatientID   = "GENESIS"
	DoctorID    = "SYSTEM"
	Description = "Blockchain initialized"
)

// CreateGenesisBlock builds the sentinel first block of an empty chain.
func CreateGenesisBlock() block.Block {
	return CreateGenesisBlockAt(time.Now())
}

// CreateGenesisBlockAt builds the genesis block with a fixed creation time.
func CreateGenesisBlockAt(at time.Time) block.Block {
	return block.New(0, PatientID, DoctorID, Description, ids.ZeroHash, block.TypeGenesis, at)
}

// IsGenesis reports whether b carries the genesis block type and sentinel link.
func IsGenesis(b block.Block) bool {
	return b.BlockType == block.TypeGenesis && b.PreviousHash == ids.ZeroHash
}
