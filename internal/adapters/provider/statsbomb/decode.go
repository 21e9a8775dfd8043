package statsbomb

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Decode reads a StatsBomb events file.
func Decode(r io.Reader) ([]Event, error) {
	var events []Event
	if err := sonic.ConfigDefault.NewDecoder(r).Decode(&events); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode events"), ErrDecode)
	}
	return events, nil
}

// DecodeEvents decodes an in-memory StatsBomb events payload.
func DecodeEvents(data []byte) ([]Event, error) {
	var events []Event
	if err := sonic.Unmarshal(data, &events); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode events"), ErrDecode)
	}
	return events, nil
}
