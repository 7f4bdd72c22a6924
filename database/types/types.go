// Copyright 2025 Blink Labs Software
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

package types

import (
	"errors"
)

// ErrBlobKeyNotFound is returned by blob stores when a key does not exist
var ErrBlobKeyNotFound = errors.New("blob key not found")

// ErrTxnWrongType is returned when a transaction from a different store
// implementation is passed to a store
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrNilTxn is returned when a nil transaction is passed to a store
var ErrNilTxn = errors.New("nil transaction")

// ErrNoStoreAvailable is returned when committing a read-write transaction
// with no backing store
var ErrNoStoreAvailable = errors.New("no store available")

// ErrBlobStoreUnavailable is returned when the blob store has been closed
var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

// ErrTxnFinished is returned when using a transaction after commit or rollback
var ErrTxnFinished = errors.New("transaction already finished")

type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

type BlobIterator interface {
	Rewind()
	Seek(prefix []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}

// Txn is implemented by the per-store transaction handles
type Txn interface {
	Commit() error
	Rollback() error
}
