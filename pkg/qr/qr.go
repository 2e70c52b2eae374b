package qr

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Sterilization labels encode cycle metadata as compact JSON so the payload
// fits a small printed QR code. Field names are intentionally terse.
const payloadVersion = 1

const dateLayout = "20060102"

// Payload is the compact wire form of a sterilization cycle label.
type Payload struct {
	V  int    `json:"v"`            // schema version
	ID string `json:"id"`           // cycle ID
	CN int    `json:"cn"`           // cycle number
	CT string `json:"ct,omitempty"` // cycle type
	SD string `json:"sd"`           // sterilization date, YYYYMMDD
	ED string `json:"ed"`           // expiration date, YYYYMMDD
	T  string `json:"t,omitempty"`  // technician
	P  string `json:"p,omitempty"`  // program
	ET string `json:"et,omitempty"` // equipment type
	S  string `json:"s,omitempty"`  // sterilizer serial
	EQ string `json:"eq,omitempty"` // equipment ID
}

// CycleLabel is the decoded, application-facing form.
type CycleLabel struct {
	CycleID           uuid.UUID
	CycleNumber       int
	CycleType         string
	SterilizationDate time.Time
	ExpirationDate    time.Time
	Technician        string
	Program           string
	EquipmentType     string
	SterilizerSerial  string
	EquipmentID       string
	Legacy            bool
}

// Legacy labels look like ORCA-STERIL-<number>-<8 hex chars of the cycle
// ID>-<YYYYMMDD>. Kept for scanners in the field printed before the JSON form.
var legacyPattern = regexp.MustCompile(`^ORCA-STERIL-(\d+)-([0-9a-fA-F]{8})-(\d{8})$`)

// LegacyExpiryDays matches the shelf life the legacy format assumed; the
// expiration date is derived since the string only carries one date.
const LegacyExpiryDays = 180

// Generate encodes a cycle label as compact JSON.
func Generate(label CycleLabel) (string, error) {
	if label.CycleNumber <= 0 {
		return "", fmt.Errorf("cycle number must be positive")
	}
	if label.SterilizationDate.IsZero() || label.ExpirationDate.IsZero() {
		return "", fmt.Errorf("sterilization and expiration dates are required")
	}

	p := Payload{
		V:  payloadVersion,
		ID: label.CycleID.String(),
		CN: label.CycleNumber,
		CT: label.CycleType,
		SD: label.SterilizationDate.Format(dateLayout),
		ED: label.ExpirationDate.Format(dateLayout),
		T:  label.Technician,
		P:  label.Program,
		ET: label.EquipmentType,
		S:  label.SterilizerSerial,
		EQ: label.EquipmentID,
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode label: %w", err)
	}
	return string(data), nil
}

// Parse decodes a scanned label. Compact JSON is tried first, then the legacy
// string format.
func Parse(content string) (*CycleLabel, error) {
	if len(content) > 0 && content[0] == '{' {
		return parseJSON(content)
	}
	if m := legacyPattern.FindStringSubmatch(content); m != nil {
		return parseLegacy(m)
	}
	return nil, fmt.Errorf("unrecognized label format")
}

func parseJSON(content string) (*CycleLabel, error) {
	var p Payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, fmt.Errorf("failed to decode label: %w", err)
	}
	if p.V != payloadVersion {
		return nil, fmt.Errorf("unsupported label version %d", p.V)
	}

	sd, err := time.Parse(dateLayout, p.SD)
	if err != nil {
		return nil, fmt.Errorf("invalid sterilization date %q: %w", p.SD, err)
	}
	ed, err := time.Parse(dateLayout, p.ED)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration date %q: %w", p.ED, err)
	}

	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid cycle ID %q: %w", p.ID, err)
	}

	return &CycleLabel{
		CycleID:           id,
		CycleNumber:       p.CN,
		CycleType:         p.CT,
		SterilizationDate: sd,
		ExpirationDate:    ed,
		Technician:        p.T,
		Program:           p.P,
		EquipmentType:     p.ET,
		SterilizerSerial:  p.S,
		EquipmentID:       p.EQ,
	}, nil
}

func parseLegacy(m []string) (*CycleLabel, error) {
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("invalid cycle number %q: %w", m[1], err)
	}

	sd, err := time.Parse(dateLayout, m[3])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", m[3], err)
	}

	return &CycleLabel{
		CycleNumber:       num,
		SterilizationDate: sd,
		ExpirationDate:    sd.AddDate(0, 0, LegacyExpiryDays),
		Legacy:            true,
	}, nil
}
