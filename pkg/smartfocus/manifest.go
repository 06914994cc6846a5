package smartfocus

import (
	"encoding/xml"
	"fmt"

	"k8s.io/utils/ptr"
)

const (
	fileEncoding  = "UTF-8"
	emailCriteria = "LOWER(EMAIL)"
	emailField    = "EMAIL"
	xmlHeader     = "<?xml version='1.0' encoding='UTF-8'?>"
)

// InsertManifest describes an insertUpload operation.
type InsertManifest struct {
	XMLName      xml.Name `xml:"insertUpload"`
	FileName     string   `xml:"fileName"`
	FileEncoding string   `xml:"fileEncoding"`
	Separator    string   `xml:"separator"`
	DateFormat   string   `xml:"dateFormat"`
	AutoMapping  bool     `xml:"autoMapping"`
	Dedup        *Dedup   `xml:"dedup,omitempty"`
}

// Dedup instructs the server to skip duplicate rows during insert.
type Dedup struct {
	Criteria        string `xml:"criteria"`
	Order           string `xml:"order"`
	SkipUnsubAndHBQ bool   `xml:"skipUnsubAndHBQ"`
}

// MergeManifest describes a mergeUpload operation.
type MergeManifest struct {
	XMLName      xml.Name `xml:"mergeUpload"`
	FileName     string   `xml:"fileName"`
	FileEncoding string   `xml:"fileEncoding"`
	Separator    string   `xml:"separator"`
	DateFormat   string   `xml:"dateFormat"`
	Criteria     string   `xml:"criteria"`
	Columns      []Column `xml:"mapping>column"`
}

// Column maps a 1-based file column to a member table field.
type Column struct {
	ColNum    int    `xml:"colNum"`
	FieldName string `xml:"fieldName"`
	ToReplace *bool  `xml:"toReplace,omitempty"`
}

func newInsertManifest(fileName string, sep Delimiter, dateFormat string, dedup bool) InsertManifest {
	m := InsertManifest{
		FileName:     fileName,
		FileEncoding: fileEncoding,
		Separator:    sep.String(),
		DateFormat:   dateFormat,
		AutoMapping:  true,
	}
	if dedup {
		m.Dedup = &Dedup{
			Criteria:        emailCriteria,
			Order:           "first",
			SkipUnsubAndHBQ: true,
		}
	}
	return m
}

func newMergeManifest(fileName string, sep Delimiter, dateFormat string, headers []string) MergeManifest {
	return MergeManifest{
		FileName:     fileName,
		FileEncoding: fileEncoding,
		Separator:    sep.String(),
		DateFormat:   dateFormat,
		Criteria:     emailCriteria,
		Columns:      columnMapping(headers),
	}
}

// columnMapping numbers header fields from 1. Every field except EMAIL is
// flagged for replacement.
func columnMapping(headers []string) []Column {
	columns := make([]Column, 0, len(headers))
	for i, name := range headers {
		col := Column{ColNum: i + 1, FieldName: name}
		if name != emailField {
			col.ToReplace = ptr.To(true)
		}
		columns = append(columns, col)
	}
	return columns
}

func marshalManifest(m any) (string, error) {
	data, err := xml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal upload manifest: %w", err)
	}
	return xmlHeader + crlf + string(data), nil
}
