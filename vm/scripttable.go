package vm

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// ScriptTable resolves a 20-byte script hash to the callee bytecode for
// APPCALL. A missing hash is reported via the ok return, never an error
// value; APPCALL turns a missing lookup into a FAULT itself.
type ScriptTable interface {
	GetScript(hash [20]byte) (script []byte, ok bool)
}

// MapScriptTable is an in-memory ScriptTable, safe for concurrent reads and
// writes, suitable for tests and for embedding in a process that already
// holds every callable script resident.
type MapScriptTable struct {
	mu      sync.RWMutex
	scripts map[[20]byte][]byte
}

// NewMapScriptTable returns an empty MapScriptTable.
func NewMapScriptTable() *MapScriptTable {
	return &MapScriptTable{scripts: make(map[[20]byte][]byte)}
}

// Put registers script under hash, overwriting any prior entry.
func (t *MapScriptTable) Put(hash [20]byte, script []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]byte, len(script))
	copy(cp, script)
	t.scripts[hash] = cp
}

// GetScript implements ScriptTable.
func (t *MapScriptTable) GetScript(hash [20]byte) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	script, ok := t.scripts[hash]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(script))
	copy(cp, script)
	return cp, true
}

// LevelDBScriptTable resolves script hashes against an on-disk goleveldb
// store, for a host process that does not want every callable script held
// resident in memory.
type LevelDBScriptTable struct {
	db *leveldb.DB
}

// OpenLevelDBScriptTable opens (creating if necessary) a goleveldb database
// at dir to back a ScriptTable.
func OpenLevelDBScriptTable(dir string) (*LevelDBScriptTable, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBScriptTable{db: db}, nil
}

// Put writes script under hash.
func (t *LevelDBScriptTable) Put(hash [20]byte, script []byte) error {
	return t.db.Put(hash[:], script, nil)
}

// GetScript implements ScriptTable.
func (t *LevelDBScriptTable) GetScript(hash [20]byte) ([]byte, bool) {
	script, err := t.db.Get(hash[:], nil)
	if err != nil {
		return nil, false
	}
	return script, true
}

// Close releases the underlying goleveldb handle.
func (t *LevelDBScriptTable) Close() error {
	return t.db.Close()
}
