package chain

import (
	"medledger/core/block"
)

// Every query reloads the chain and scans it linearly; no index is kept.

// Blocks returns the full chain in order.
func (l *Ledger) Blocks() ([]block.Block, error) {
	unlock, err := l.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return l.load()
}

// GetRecordByHash returns the first block with the given hash.
func (l *Ledger) GetRecordByHash(hash string) (block.Block, error) {
	unlock, err := l.rlock()
	if err != nil {
		return block.Block{}, err
	}
	defer unlock()

	chain, err := l.load()
	if err != nil {
		return block.Block{}, err
	}
	for _, b := range chain {
		if b.Hash == hash {
			return b, nil
		}
	}
	return block.Block{}, ErrNotFound
}

// GetPatientRecords returns every record block for patientID in chain
// order. The genesis block never matches.
func (l *Ledger) GetPatientRecords(patientID string) ([]block.Block, error) {
	return l.filter(func(b *block.Block) bool {
		return b.BlockType != block.TypeGenesis && b.PatientID == patientID
	})
}

// GetDoctorRecords returns every block whose doctor is doctorID in chain
// order. "SYSTEM" matches the genesis block.
func (l *Ledger) GetDoctorRecords(doctorID string) ([]block.Block, error) {
	return l.filter(func(b *block.Block) bool { return b.DoctorID == doctorID })
}

func (l *Ledger) filter(match func(b *block.Block) bool) ([]block.Block, error) {
	unlock, err := l.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	chain, err := l.load()
	if err != nil {
		return nil, err
	}
	out := []block.Block{}
	for i := range chain {
		if match(&chain[i]) {
			out = append(out, chain[i])
		}
	}
	return out, nil
}

// DefaultRecentCount is the number of blocks GetRecentRecords callers use
// when they have no preference.
const DefaultRecentCount = 10

// GetRecentRecords returns the last n blocks in chain order, or the whole
// chain when it is shorter. n <= 0 yields nothing.
func (l *Ledger) GetRecentRecords(n int) ([]block.Block, error) {
	unlock, err := l.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	chain, err := l.load()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []block.Block{}, nil
	}
	if len(chain) > n {
		chain = chain[len(chain)-n:]
	}
	return chain, nil
}
