package validation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/add_record_request_v1.json
var addRecordSchema string

var schemaLoader = gojsonschema.NewStringLoader(addRecordSchema)

// ErrInvalidRequest wraps every rejection so handlers can map it to 400.
var ErrInvalidRequest = errors.New("validation: invalid record request")

// RecordRequest is the payload the treatment workflow submits for one record.
// Identifiers may not contain '|', the canonical hash delimiter, so two
// different requests can never share a canonical encoding through shifted
// field boundaries. The treatment keeps its own '|' separators.
type RecordRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Treatment string `json:"treatment"`
}

// ValidateRecordRequest checks payload against the add-record schema and
// decodes it.
func ValidateRecordRequest(payload []byte) (RecordRequest, error) {
	var req RecordRequest
	if !utf8.Valid(payload) {
		return req, fmt.Errorf("%w: payload is not valid UTF-8", ErrInvalidRequest)
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return req, fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// ValidateFields runs the same checks on already-decoded values, for callers
// such as the CLI that never see JSON. Raw values must be valid UTF-8;
// marshaling would otherwise mask bad bytes as U+FFFD.
func ValidateFields(patientID, doctorID, treatment string) error {
	for _, v := range []string{patientID, doctorID, treatment} {
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidRequest, v)
		}
	}
	payload, err := json.Marshal(RecordRequest{PatientID: patientID, DoctorID: doctorID, Treatment: treatment})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	_, err = ValidateRecordRequest(payload)
	return err
}
