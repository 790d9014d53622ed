package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/chonker8/engine/grid"
	"github.com/klauspost/compress/snappy"
)

// SchemaVersion is embedded in every persisted record. A backing file whose
// schema version doesn't match is a fatal open error, never a silent upgrade.
const SchemaVersion = "1.0.0"

// PageRecord is one row in the append-only log: a single encoded grid at a
// specific version, optionally carrying a checkpoint tag. Records are never
// mutated once written.
type PageRecord struct {
	Page          uint32
	Timestamp     int64
	Encoded       *grid.CompressedGrid
	Density       float64
	SchemaVersion string
	Tag           *string
	Version       uint64
}

// snapshotRecord is the on-disk mirror of PageRecord. The grid payload is
// snappy-compressed when that shrinks it, independent of the sparse/dense
// choice made by the grid codec itself.
type snapshotRecord struct {
	Page          uint32  `json:"page"`
	Timestamp     int64   `json:"timestamp"`
	W             int     `json:"w"`
	H             int     `json:"h"`
	IsSparse      bool    `json:"is_sparse"`
	Wide          bool    `json:"wide"`
	Snappy        bool    `json:"snappy"`
	Data          string  `json:"data"` // base64
	Density       float64 `json:"density"`
	SchemaVersion string  `json:"schema_version"`
	Tag           *string `json:"tag,omitempty"`
	Version       uint64  `json:"version"`
}

type snapshot struct {
	Records        []snapshotRecord `json:"records"`
	CurrentVersion uint64           `json:"current_version"`
}

func toSnapshotRecord(r PageRecord, compress bool) snapshotRecord {
	data := r.Encoded.Data
	useSnappy := false
	if compress {
		if c := snappy.Encode(nil, data); len(c) < len(data) {
			data = c
			useSnappy = true
		}
	}
	return snapshotRecord{
		Page:          r.Page,
		Timestamp:     r.Timestamp,
		W:             r.Encoded.W,
		H:             r.Encoded.H,
		IsSparse:      r.Encoded.IsSparse,
		Wide:          r.Encoded.Wide,
		Snappy:        useSnappy,
		Data:          base64.StdEncoding.EncodeToString(data),
		Density:       r.Density,
		SchemaVersion: r.SchemaVersion,
		Tag:           r.Tag,
		Version:       r.Version,
	}
}

func fromSnapshotRecord(sr snapshotRecord) (PageRecord, error) {
	if sr.SchemaVersion != SchemaVersion {
		return PageRecord{}, &SchemaMismatchError{Expected: SchemaVersion, Got: sr.SchemaVersion}
	}
	raw, err := base64.StdEncoding.DecodeString(sr.Data)
	if err != nil {
		return PageRecord{}, &CorruptError{Reason: fmt.Sprintf("record page %d: bad base64: %v", sr.Page, err)}
	}
	if sr.Snappy {
		raw, err = snappy.Decode(nil, raw)
		if err != nil {
			return PageRecord{}, &CorruptError{Reason: fmt.Sprintf("record page %d: bad snappy stream: %v", sr.Page, err)}
		}
	}
	return PageRecord{
		Page:      sr.Page,
		Timestamp: sr.Timestamp,
		Encoded: &grid.CompressedGrid{
			W: sr.W, H: sr.H,
			IsSparse: sr.IsSparse,
			Wide:     sr.Wide,
			Data:     raw,
		},
		Density:       sr.Density,
		SchemaVersion: sr.SchemaVersion,
		Tag:           sr.Tag,
		Version:       sr.Version,
	}, nil
}

func marshalSnapshot(records []PageRecord, currentVersion uint64, compress bool) ([]byte, error) {
	s := snapshot{CurrentVersion: currentVersion}
	s.Records = make([]snapshotRecord, len(records))
	for i, r := range records {
		s.Records[i] = toSnapshotRecord(r, compress)
	}
	return json.Marshal(s)
}

func unmarshalSnapshot(body []byte) ([]PageRecord, uint64, error) {
	var s snapshot
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, 0, &CorruptError{Reason: fmt.Sprintf("bad snapshot json: %v", err)}
	}
	records := make([]PageRecord, len(s.Records))
	for i, sr := range s.Records {
		r, err := fromSnapshotRecord(sr)
		if err != nil {
			return nil, 0, err
		}
		records[i] = r
	}
	return records, s.CurrentVersion, nil
}
