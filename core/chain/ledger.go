package chain

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"medledger/core/audit"
	"medledger/core/block"
	"medledger/core/genesis"
	"medledger/core/scan"
	"medledger/core/storage"
)

var (
	// ErrNotFound is returned by lookups that match no block.
	ErrNotFound = errors.New("chain: record not found")
	// ErrNotCommitted accompanies a hash that was computed but never
	// reached durable storage. Callers must not record that hash as stored.
	ErrNotCommitted = errors.New("chain: record computed but not committed")
	// ErrInvalidInput rejects field values the artifact cannot store byte for
	// byte, which would make the persisted hash unverifiable.
	ErrInvalidInput = errors.New("chain: invalid record input")
)

// ChainStore is the persistence the ledger needs. *storage.Storage implements it.
type ChainStore interface {
	Load() ([]block.Block, error)
	Save(chain []block.Block) error
	Size() (int64, error)
	RestoreBackup() error
	// Lock and RLock take the cross-process artifact lock and return its release.
	Lock() (func(), error)
	RLock() (func(), error)
}

// Ledger is the single-writer, hash-linked medical record log. Appends and
// rollbacks hold the write lock across load-modify-save; reads share the
// read lock and always reload from storage. Both locks cover the in-process
// mutex and the store's artifact lock, so separate ledgers or processes on
// one artifact are serialized too.
type Ledger struct {
	mu     sync.RWMutex
	store  ChainStore
	audit  audit.AuditLogger
	log    logrus.FieldLogger
	policy CorruptPolicy
}

// NewLedger wires a ledger to its store and audit log. Nil audit logger and
// logger default to a no-op audit log and the logrus standard logger.
func NewLedger(store ChainStore, auditLogger audit.AuditLogger, logger logrus.FieldLogger, policy CorruptPolicy) *Ledger {
	if auditLogger == nil {
		auditLogger = audit.NewNopAuditLogger()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if policy == "" {
		policy = FailOpen
	}
	return &Ledger{
		store:  store,
		audit:  auditLogger,
		log:    logger.WithField("module", "ledger"),
		policy: policy,
	}
}

// lock takes the write side of the mutex, then the exclusive artifact lock.
func (l *Ledger) lock() (func(), error) {
	l.mu.Lock()
	release, err := l.store.Lock()
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	return func() {
		release()
		l.mu.Unlock()
	}, nil
}

func (l *Ledger) rlock() (func(), error) {
	l.mu.RLock()
	release, err := l.store.RLock()
	if err != nil {
		l.mu.RUnlock()
		return nil, err
	}
	return func() {
		release()
		l.mu.RUnlock()
	}, nil
}

func (l *Ledger) load() ([]block.Block, error) {
	chain, err := l.store.Load()
	if err == nil {
		return chain, nil
	}
	if errors.Is(err, storage.ErrCorruptChain) && l.policy == FailOpen {
		l.log.WithError(err).Warn("corrupt chain artifact treated as empty chain")
		l.audit.Append("Corrupt blockchain artifact treated as empty chain")
		return []block.Block{}, nil
	}
	return nil, err
}

// AddRecord appends a medical record and returns its hash. The genesis
// block is created first when the chain is empty. If the save fails the
// hash is still returned together with an error wrapping ErrNotCommitted.
func (l *Ledger) AddRecord(patientID, doctorID, treatment string) (string, error) {
	if err := checkInput(patientID, doctorID, treatment); err != nil {
		return "", err
	}
	unlock, err := l.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	chain, err := l.load()
	if err != nil {
		return "", err
	}
	if len(chain) == 0 {
		chain = append(chain, genesis.CreateGenesisBlock())
		l.log.Info("genesis block created")
	}

	tail := chain[len(chain)-1]
	b := block.NewRecordBlock(int64(len(chain)), patientID, doctorID, treatment, tail.Hash)
	chain = append(chain, b)

	entry := l.log.WithFields(logrus.Fields{
		"index":   b.Index,
		"patient": patientID,
		"doctor":  doctorID,
		"hash":    b.Hash,
	})
	if err := l.store.Save(chain); err != nil {
		entry.WithError(err).Error("failed to save block")
		l.audit.Append(fmt.Sprintf("Failed to save block - Index: %d, Patient: %s, Doctor: %s", b.Index, patientID, doctorID))
		return b.Hash, fmt.Errorf("%w: %w", ErrNotCommitted, err)
	}
	entry.Info("block added")
	l.audit.Append(fmt.Sprintf("Blockchain saved with %d blocks", len(chain)))
	l.audit.Append(fmt.Sprintf("Block added - Index: %d, Patient: %s, Doctor: %s", b.Index, patientID, doctorID))
	return b.Hash, nil
}

// checkInput rejects invalid UTF-8. JSON encoding would replace such bytes
// with U+FFFD, so the stored fields would no longer hash to the stored hash.
func checkInput(patientID, doctorID, treatment string) error {
	for _, f := range [...]struct{ name, value string }{
		{"patient_id", patientID},
		{"doctor_id", doctorID},
		{"treatment", treatment},
	} {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, f.name)
		}
	}
	return nil
}

// Verify reloads the chain and reports the first integrity failure, if any.
func (l *Ledger) Verify() (scan.Result, error) {
	unlock, err := l.rlock()
	if err != nil {
		return scan.Result{}, err
	}
	defer unlock()
	return l.verify()
}

func (l *Ledger) verify() (scan.Result, error) {
	chain, err := l.load()
	if err != nil {
		return scan.Result{}, err
	}
	res := scan.Verify(chain)
	if !res.Valid {
		l.log.WithFields(logrus.Fields{
			"index":    res.BlockIndex,
			"reason":   res.Reason,
			"expected": res.Expected,
			"actual":   res.Actual,
		}).Warn("chain verification failed")
		return res, nil
	}
	if len(chain) > 0 {
		l.log.WithField("blocks", len(chain)).Debug("chain verified")
		l.audit.Append(fmt.Sprintf("Blockchain verified - %d blocks OK", len(chain)))
	}
	return res, nil
}

// VerifyChain reports whether every block is correctly linked and hashed.
// An empty chain is valid.
func (l *Ledger) VerifyChain() (bool, error) {
	res, err := l.Verify()
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// DetectTampering lists every hash and link discrepancy in the chain.
func (l *Ledger) DetectTampering() ([]scan.Finding, error) {
	unlock, err := l.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	chain, err := l.load()
	if err != nil {
		return nil, err
	}
	findings := scan.DetectTampering(chain)
	if len(findings) > 0 {
		l.log.WithField("findings", len(findings)).Warn("tampering detected")
	}
	return findings, nil
}

// ExportChain writes a copy of the current chain to destination.
func (l *Ledger) ExportChain(destination string) error {
	unlock, err := l.rlock()
	if err != nil {
		return err
	}
	defer unlock()

	chain, err := l.load()
	if err != nil {
		return err
	}
	if err := storage.WriteChainFile(destination, chain); err != nil {
		l.log.WithError(err).WithField("destination", destination).Error("export failed")
		return fmt.Errorf("chain: export to %s: %w", destination, err)
	}
	l.log.WithField("destination", destination).Info("chain exported")
	l.audit.Append(fmt.Sprintf("Blockchain exported to %s", destination))
	return nil
}

// RollbackToBackup restores the chain to the state before the last save.
func (l *Ledger) RollbackToBackup() error {
	unlock, err := l.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := l.store.RestoreBackup(); err != nil {
		l.log.WithError(err).Error("rollback failed")
		return err
	}
	l.log.Info("chain restored from backup")
	l.audit.Append("Blockchain restored from backup")
	return nil
}

// Readable reports whether the persisted artifact can be parsed, regardless
// of the corrupt policy. A missing artifact is readable.
func (l *Ledger) Readable() error {
	unlock, err := l.rlock()
	if err != nil {
		return err
	}
	defer unlock()
	_, err = l.store.Load()
	return err
}
