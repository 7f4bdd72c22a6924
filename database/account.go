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

package database

import (
	"errors"

	"github.com/blinklabs-io/gatekeeper/database/models"
	"github.com/blinklabs-io/gatekeeper/database/types"
	"github.com/blinklabs-io/gouroboros/cbor"
)

var ErrAccountNotFound = errors.New("account not found")

// GetAccount returns the account stored at the given address
func (d *Database) GetAccount(
	address []byte,
	txn *Txn,
) (*models.Account, error) {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, false)
		defer txn.Release()
	}
	val, err := d.Blob().Get(txn.Blob(), types.AccountBlobKey(address))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	ret := &models.Account{}
	if _, err := cbor.Decode(val, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// AccountExists returns whether an account is stored at the given address
func (d *Database) AccountExists(address []byte, txn *Txn) (bool, error) {
	_, err := d.GetAccount(address, txn)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetAccount stores an account at the given address
func (d *Database) SetAccount(
	address []byte,
	account *models.Account,
	txn *Txn,
) error {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, true)
		return txn.Do(func(txn *Txn) error {
			return d.SetAccount(address, account, txn)
		})
	}
	val, err := cbor.Encode(account)
	if err != nil {
		return err
	}
	return d.Blob().Set(txn.Blob(), types.AccountBlobKey(address), val)
}

// DeleteAccount removes the account at the given address
func (d *Database) DeleteAccount(address []byte, txn *Txn) error {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, true)
		return txn.Do(func(txn *Txn) error {
			return d.DeleteAccount(address, txn)
		})
	}
	return d.Blob().Delete(txn.Blob(), types.AccountBlobKey(address))
}

// ForEachAccount calls fn for every stored account, in address order.
// Iteration stops at the first error returned by fn
func (d *Database) ForEachAccount(
	txn *Txn,
	fn func(address []byte, account *models.Account) error,
) error {
	if txn == nil {
		txn = NewBlobOnlyTxn(d, false)
		defer txn.Release()
	}
	prefix := []byte(types.AccountBlobKeyPrefix)
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		account := &models.Account{}
		if _, err := cbor.Decode(val, account); err != nil {
			return err
		}
		if err := fn(types.AccountAddressFromBlobKey(item.Key()), account); err != nil {
			return err
		}
	}
	return iter.Err()
}
