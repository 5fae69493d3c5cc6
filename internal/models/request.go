package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProductID is a product identifier as it arrives on the wire. It accepts a
// JSON number or a string holding an integer ("42"), since HTML number inputs
// are posted as strings.
type ProductID int64

// UnmarshalJSON implements json.Unmarshaler.
func (p *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return &InvalidRequestError{Field: "product_id", Reason: "is required"}
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &InvalidRequestError{Field: "product_id", Reason: "must be an integer"}
		}
		raw = strings.TrimSpace(s)
	}
	id, err := ParseProductID(raw)
	if err != nil {
		return err
	}
	*p = id
	return nil
}

// ParseProductID parses s as an integral product id. Integral floats such as
// "12.0" are accepted; "12.5", "", and non-numeric text are not.
func ParseProductID(s string) (ProductID, error) {
	if s == "" {
		return 0, &InvalidRequestError{Field: "product_id", Reason: "is required"}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ProductID(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, &InvalidRequestError{Field: "product_id", Reason: "must be an integer"}
	}
	return ProductID(int64(f)), nil
}

// RecommendRequest is the body of a recommendation request.
type RecommendRequest struct {
	ProductID *ProductID `json:"product_id" validate:"required"`
	TopN      *int       `json:"top_n,omitempty"`
}

// DecodeRecommendRequest decodes a JSON request body. Syntax and type errors
// are reported as *InvalidRequestError.
func DecodeRecommendRequest(body []byte) (*RecommendRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &InvalidRequestError{Reason: "empty request body"}
	}
	var req RecommendRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var invalid *InvalidRequestError
		if errors.As(err, &invalid) {
			return nil, invalid
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &InvalidRequestError{Field: typeErr.Field, Reason: fmt.Sprintf("must be %s", typeErr.Type)}
		}
		return nil, &InvalidRequestError{Reason: "malformed JSON body"}
	}
	return &req, nil
}

// SearchRequest is the query of a product name search.
type SearchRequest struct {
	Query string `json:"q" validate:"max=200"`
	Limit int    `json:"limit" validate:"min=0,max=1000"`
}
