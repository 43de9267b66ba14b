package store

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/gardenzilla/procurement/internal/procurement"
)

// Core deterministic encoding with RFC 3339 timestamps, so that stored
// times keep sub-second precision and time zones.
var encMode cbor.EncMode

// Unknown fields are ignored so that older binaries can read newer records.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

func encode(p *procurement.Procurement) ([]byte, error) {
	return encMode.Marshal(p)
}

func decode(data []byte) (*procurement.Procurement, error) {
	var p procurement.Procurement
	if err := decMode.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
