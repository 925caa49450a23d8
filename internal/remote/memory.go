package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs development runs without a
// database and the coordinator tests.
type Memory struct {
	mu   sync.RWMutex
	seq  int64
	cols map[string]map[string]memDoc
}

type memDoc struct {
	data json.RawMessage
	seq  int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]memDoc)}
}

func (m *Memory) GetCollection(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(collection, nil), nil
}

func (m *Memory) Query(_ context.Context, collection, field, value, orderBy string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.sorted(collection, func(r Record) bool {
		return fieldString(r.Data, field) == value
	})
	sort.SliceStable(recs, func(i, j int) bool {
		return fieldString(recs[i].Data, orderBy) > fieldString(recs[j].Data, orderBy)
	})
	return recs, nil
}

func (m *Memory) GetDocument(_ context.Context, collection, id string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.cols[collection][id]
	if !ok {
		return nil, false, nil
	}
	return clone(doc.data), true, nil
}

func (m *Memory) SetDocument(_ context.Context, collection, id string, data any) error {
	raw, err := Encode(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, raw)
	return nil
}

func (m *Memory) AddDocument(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := m.SetDocument(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) DeleteDocument(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cols[collection], id)
	return nil
}

func (m *Memory) ReplaceCollection(_ context.Context, collection string, records []Record) error {
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("replace %s: record without id", collection)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cols[collection] = make(map[string]memDoc, len(records))
	for _, r := range records {
		m.put(collection, r.ID, r.Data)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// put stores a copy of raw, keeping the original insertion order for
// existing documents.
func (m *Memory) put(collection, id string, raw json.RawMessage) {
	col, ok := m.cols[collection]
	if !ok {
		col = make(map[string]memDoc)
		m.cols[collection] = col
	}
	seq := col[id].seq
	if seq == 0 {
		m.seq++
		seq = m.seq
	}
	col[id] = memDoc{data: clone(raw), seq: seq}
}

func (m *Memory) sorted(collection string, keep func(Record) bool) []Record {
	col := m.cols[collection]
	type entry struct {
		rec Record
		seq int64
	}
	entries := make([]entry, 0, len(col))
	for id, doc := range col {
		r := Record{ID: id, Data: clone(doc.data)}
		if keep != nil && !keep(r) {
			continue
		}
		entries = append(entries, entry{rec: r, seq: doc.seq})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}

func clone(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), raw...)
}

// fieldString reads a top-level field as a string for filtering and
// ordering. Missing fields and non-objects read as "".
func fieldString(raw json.RawMessage, field string) string {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	v, ok := obj[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
