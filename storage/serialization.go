// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docqa/core"
)

// MUS serializers for the domain types persisted by the badger backend.
// Field order is part of the on-disk format; append new fields at the end.

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id core.ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (core.ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (idMUS) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

// timeMUS serializes timestamps as UnixMicro, UTC on the way out.
type timeMUS struct{}

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// vectorMUS serializes embedding vectors with a varint length prefix.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	// A corrupt prefix must not drive the allocation: every element
	// occupies four bytes, so the length is bounded by what remains.
	if length < 0 || length > (len(bs)-n)/4 {
		return nil, n, fmt.Errorf("%w: vector length %d exceeds %d remaining bytes",
			ErrSerializationFailed, length, len(bs)-n)
	}
	v := make([]float32, length)
	for i := 0; i < length; i++ {
		f, fn, err := raw.Float32.Unmarshal(bs[n:])
		n += fn
		if err != nil {
			return nil, n, err
		}
		v[i] = f
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// DocumentMUS serializes core.Document values.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(doc core.Document, bs []byte) int {
	n := IDMUS.Marshal(doc.Id, bs)
	n += varint.Uint64.Marshal(uint64(doc.UserId), bs[n:])
	n += ord.String.Marshal(doc.Filename, bs[n:])
	n += ord.String.Marshal(doc.BlobLocator, bs[n:])
	n += ord.String.Marshal(doc.CollectionName, bs[n:])
	n += varint.Int.Marshal(int(doc.Status), bs[n:])
	n += ord.String.Marshal(doc.ErrorMessage, bs[n:])
	n += timeMUS{}.Marshal(doc.CreatedAt, bs[n:])
	n += timeMUS{}.Marshal(doc.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (core.Document, int, error) {
	var (
		doc core.Document
		n   int
	)
	id, fn, err := IDMUS.Unmarshal(bs)
	n += fn
	if err != nil {
		return doc, n, err
	}
	doc.Id = id

	userID, fn, err := varint.Uint64.Unmarshal(bs[n:])
	n += fn
	if err != nil {
		return doc, n, err
	}
	doc.UserId = core.UserID(userID)

	if doc.Filename, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + fn, err
	}
	n += fn
	if doc.BlobLocator, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + fn, err
	}
	n += fn
	if doc.CollectionName, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + fn, err
	}
	n += fn

	status, fn, err := varint.Int.Unmarshal(bs[n:])
	n += fn
	if err != nil {
		return doc, n, err
	}
	doc.Status = core.DocumentStatus(status)

	if doc.ErrorMessage, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + fn, err
	}
	n += fn
	if doc.CreatedAt, fn, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return doc, n + fn, err
	}
	n += fn
	if doc.UpdatedAt, fn, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return doc, n + fn, err
	}
	n += fn
	return doc, n, nil
}

func (documentMUS) Size(doc core.Document) int {
	return IDMUS.Size(doc.Id) +
		varint.Uint64.Size(uint64(doc.UserId)) +
		ord.String.Size(doc.Filename) +
		ord.String.Size(doc.BlobLocator) +
		ord.String.Size(doc.CollectionName) +
		varint.Int.Size(int(doc.Status)) +
		ord.String.Size(doc.ErrorMessage) +
		timeMUS{}.Size(doc.CreatedAt) +
		timeMUS{}.Size(doc.UpdatedAt)
}

// ChunkRecordMUS serializes core.ChunkRecord values.
var ChunkRecordMUS = chunkRecordMUS{}

type chunkRecordMUS struct{}

func (chunkRecordMUS) Marshal(chunk core.ChunkRecord, bs []byte) int {
	n := IDMUS.Marshal(chunk.Id, bs)
	n += IDMUS.Marshal(chunk.DocumentId, bs[n:])
	n += ord.String.Marshal(chunk.Content, bs[n:])
	n += vectorMUS{}.Marshal(chunk.Vector, bs[n:])
	return n
}

func (chunkRecordMUS) Unmarshal(bs []byte) (core.ChunkRecord, int, error) {
	var (
		chunk core.ChunkRecord
		n     int
		fn    int
		err   error
	)
	if chunk.Id, fn, err = IDMUS.Unmarshal(bs); err != nil {
		return chunk, fn, err
	}
	n += fn
	if chunk.DocumentId, fn, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return chunk, n + fn, err
	}
	n += fn
	if chunk.Content, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return chunk, n + fn, err
	}
	n += fn
	if chunk.Vector, fn, err = (vectorMUS{}).Unmarshal(bs[n:]); err != nil {
		return chunk, n + fn, err
	}
	n += fn
	return chunk, n, nil
}

func (chunkRecordMUS) Size(chunk core.ChunkRecord) int {
	return IDMUS.Size(chunk.Id) +
		IDMUS.Size(chunk.DocumentId) +
		ord.String.Size(chunk.Content) +
		vectorMUS{}.Size(chunk.Vector)
}

// QARecordMUS serializes core.QARecord values.
var QARecordMUS = qaRecordMUS{}

type qaRecordMUS struct{}

func (qaRecordMUS) Marshal(record core.QARecord, bs []byte) int {
	n := IDMUS.Marshal(record.Id, bs)
	n += varint.Uint64.Marshal(uint64(record.UserId), bs[n:])
	n += ord.String.Marshal(record.Question, bs[n:])
	n += ord.String.Marshal(record.Answer, bs[n:])
	n += timeMUS{}.Marshal(record.AskedAt, bs[n:])
	return n
}

func (qaRecordMUS) Unmarshal(bs []byte) (core.QARecord, int, error) {
	var (
		record core.QARecord
		n      int
		fn     int
		err    error
	)
	if record.Id, fn, err = IDMUS.Unmarshal(bs); err != nil {
		return record, fn, err
	}
	n += fn

	userID, fn, err := varint.Uint64.Unmarshal(bs[n:])
	n += fn
	if err != nil {
		return record, n, err
	}
	record.UserId = core.UserID(userID)

	if record.Question, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return record, n + fn, err
	}
	n += fn
	if record.Answer, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return record, n + fn, err
	}
	n += fn
	if record.AskedAt, fn, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return record, n + fn, err
	}
	n += fn
	return record, n, nil
}

func (qaRecordMUS) Size(record core.QARecord) int {
	return IDMUS.Size(record.Id) +
		varint.Uint64.Size(uint64(record.UserId)) +
		ord.String.Size(record.Question) +
		ord.String.Size(record.Answer) +
		timeMUS{}.Size(record.AskedAt)
}

// CollectionMUS serializes core.VectorCollection values.
var CollectionMUS = collectionMUS{}

type collectionMUS struct{}

func (collectionMUS) Marshal(col core.VectorCollection, bs []byte) int {
	n := ord.String.Marshal(col.Name, bs)
	n += varint.Int.Marshal(col.Dimension, bs[n:])
	n += timeMUS{}.Marshal(col.CreatedAt, bs[n:])
	return n
}

func (collectionMUS) Unmarshal(bs []byte) (core.VectorCollection, int, error) {
	var (
		col core.VectorCollection
		n   int
		fn  int
		err error
	)
	if col.Name, fn, err = ord.String.Unmarshal(bs); err != nil {
		return col, fn, err
	}
	n += fn
	if col.Dimension, fn, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return col, n + fn, err
	}
	n += fn
	if col.CreatedAt, fn, err = (timeMUS{}).Unmarshal(bs[n:]); err != nil {
		return col, n + fn, err
	}
	n += fn
	return col, n, nil
}

func (collectionMUS) Size(col core.VectorCollection) int {
	return ord.String.Size(col.Name) +
		varint.Int.Size(col.Dimension) +
		timeMUS{}.Size(col.CreatedAt)
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, DocumentMUS.Size(*doc))
	DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalChunkRecord serializes a ChunkRecord to bytes.
func MarshalChunkRecord(chunk *core.ChunkRecord) []byte {
	buf := make([]byte, ChunkRecordMUS.Size(*chunk))
	ChunkRecordMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunkRecord deserializes a ChunkRecord from bytes.
func UnmarshalChunkRecord(data []byte) (*core.ChunkRecord, error) {
	chunk, _, err := ChunkRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalQARecord serializes a QARecord to bytes.
func MarshalQARecord(record *core.QARecord) []byte {
	buf := make([]byte, QARecordMUS.Size(*record))
	QARecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalQARecord deserializes a QARecord from bytes.
func UnmarshalQARecord(data []byte) (*core.QARecord, error) {
	record, _, err := QARecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalCollection serializes a VectorCollection to bytes.
func MarshalCollection(col *core.VectorCollection) []byte {
	buf := make([]byte, CollectionMUS.Size(*col))
	CollectionMUS.Marshal(*col, buf)
	return buf
}

// UnmarshalCollection deserializes a VectorCollection from bytes.
func UnmarshalCollection(data []byte) (*core.VectorCollection, error) {
	col, _, err := CollectionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &col, nil
}
