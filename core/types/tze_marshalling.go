// Copyright 2026 The go-tze Authors
// This file is part of the go-tze library.
//
// The go-tze library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-tze library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-tze library. If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"encoding/json"
	"errors"

	"github.com/tzelabs/go-tze/common"
	"github.com/tzelabs/go-tze/common/amount"
	"github.com/tzelabs/go-tze/common/hexutil"
)

// tzeDataJSON is the JSON representation of TzeData.
type tzeDataJSON struct {
	ExtensionID *hexutil.Uint64 `json:"extensionId"`
	Mode        *hexutil.Uint64 `json:"mode"`
	Payload     *hexutil.Bytes  `json:"payload"`
}

// MarshalJSON marshals as JSON with hex-encoded fields.
func (d TzeData) MarshalJSON() ([]byte, error) {
	var enc tzeDataJSON
	enc.ExtensionID = (*hexutil.Uint64)(&d.ExtensionID)
	enc.Mode = (*hexutil.Uint64)(&d.Mode)
	payload := hexutil.Bytes(d.Payload)
	if payload == nil {
		payload = hexutil.Bytes{}
	}
	enc.Payload = &payload
	return json.Marshal(&enc)
}

// UnmarshalJSON unmarshals from JSON.
func (d *TzeData) UnmarshalJSON(input []byte) error {
	var dec tzeDataJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.ExtensionID == nil {
		return errors.New("missing required field 'extensionId' for TzeData")
	}
	d.ExtensionID = ExtensionID(*dec.ExtensionID)
	if dec.Mode == nil {
		return errors.New("missing required field 'mode' for TzeData")
	}
	d.Mode = Mode(*dec.Mode)
	if dec.Payload == nil {
		return errors.New("missing required field 'payload' for TzeData")
	}
	d.Payload = nil
	if len(*dec.Payload) > 0 {
		d.Payload = *dec.Payload
	}
	return nil
}

// tzeOutPointJSON is the JSON representation of TzeOutPoint.
type tzeOutPointJSON struct {
	Hash  *common.Hash    `json:"hash"`
	Index *hexutil.Uint64 `json:"index"`
}

// MarshalJSON marshals as JSON. The hash is in display order.
func (op TzeOutPoint) MarshalJSON() ([]byte, error) {
	index := hexutil.Uint64(op.Index)
	return json.Marshal(&tzeOutPointJSON{Hash: &op.Hash, Index: &index})
}

// UnmarshalJSON unmarshals from JSON.
func (op *TzeOutPoint) UnmarshalJSON(input []byte) error {
	var dec tzeOutPointJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Hash == nil {
		return errors.New("missing required field 'hash' for TzeOutPoint")
	}
	if dec.Index == nil {
		return errors.New("missing required field 'index' for TzeOutPoint")
	}
	if uint64(*dec.Index) > 0xFFFFFFFF {
		return errors.New("TzeOutPoint index exceeds 32 bits")
	}
	op.Hash, op.Index = *dec.Hash, uint32(*dec.Index)
	return nil
}

// tzeInJSON is the JSON representation of TzeIn.
type tzeInJSON struct {
	PrevOut *TzeOutPoint `json:"prevout"`
	Witness *TzeData     `json:"witness"`
}

// MarshalJSON marshals as JSON.
func (in TzeIn) MarshalJSON() ([]byte, error) {
	return json.Marshal(&tzeInJSON{PrevOut: &in.PrevOut, Witness: &in.Witness})
}

// UnmarshalJSON unmarshals from JSON.
func (in *TzeIn) UnmarshalJSON(input []byte) error {
	var dec tzeInJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.PrevOut == nil {
		return errors.New("missing required field 'prevout' for TzeIn")
	}
	if dec.Witness == nil {
		return errors.New("missing required field 'witness' for TzeIn")
	}
	in.PrevOut, in.Witness = *dec.PrevOut, *dec.Witness
	return nil
}

// tzeOutJSON is the JSON representation of TzeOut.
type tzeOutJSON struct {
	Value        *amount.Amount `json:"value"`
	Precondition *TzeData       `json:"precondition"`
}

// MarshalJSON marshals as JSON. The value is a decimal zatoshi string.
func (out TzeOut) MarshalJSON() ([]byte, error) {
	return json.Marshal(&tzeOutJSON{Value: &out.Value, Precondition: &out.Precondition})
}

// UnmarshalJSON unmarshals from JSON.
func (out *TzeOut) UnmarshalJSON(input []byte) error {
	var dec tzeOutJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Value == nil {
		return errors.New("missing required field 'value' for TzeOut")
	}
	if dec.Precondition == nil {
		return errors.New("missing required field 'precondition' for TzeOut")
	}
	out.Value, out.Precondition = *dec.Value, *dec.Precondition
	return nil
}
