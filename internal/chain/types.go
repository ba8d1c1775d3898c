package chain

import (
	"encoding/json"
	"strconv"
)

// CoinMetadata mirrors suix_getCoinMetadata.
type CoinMetadata struct {
	ID          string  `json:"id"`
	Decimals    uint8   `json:"decimals"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	IconURL     *string `json:"iconUrl"`
}

// Balance mirrors one entry of suix_getAllBalances.
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// ObjectOptions selects which parts of an object the node returns.
type ObjectOptions struct {
	ShowType    bool `json:"showType"`
	ShowContent bool `json:"showContent"`
	ShowOwner   bool `json:"showOwner"`
}

// DefaultObjectOptions requests type and content, which is what pool
// decoding needs.
var DefaultObjectOptions = ObjectOptions{ShowType: true, ShowContent: true}

// ObjectResponse mirrors sui_getObject.
type ObjectResponse struct {
	Data  *ObjectData  `json:"data,omitempty"`
	Error *ObjectError `json:"error,omitempty"`
}

// ObjectData is the object body.
type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  SequenceNumber `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Content  *MoveContent   `json:"content,omitempty"`
}

// MoveContent holds parsed Move fields.
type MoveContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// ObjectError is returned for deleted or missing objects.
type ObjectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

func (e *ObjectError) Error() string {
	if e.ObjectID != "" {
		return "object " + e.ObjectID + ": " + e.Code
	}
	return "object: " + e.Code
}

// SequenceNumber accepts both the string and numeric encodings nodes use.
type SequenceNumber uint64

func (s *SequenceNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return err
		}
		*s = SequenceNumber(v)
		return nil
	}
	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SequenceNumber(v)
	return nil
}
