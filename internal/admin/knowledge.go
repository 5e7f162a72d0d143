package admin

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type DocumentType int

const (
	TypePDF DocumentType = iota
	TypeText
	TypeWebpage
	TypeFAQ
)

var documentTypes = []DocumentType{TypePDF, TypeText, TypeWebpage, TypeFAQ}

func (t DocumentType) String() string {
	switch t {
	case TypePDF:
		return "pdf"
	case TypeText:
		return "text"
	case TypeWebpage:
		return "webpage"
	case TypeFAQ:
		return "faq"
	}
	return fmt.Sprintf("DocumentType(%d)", int(t))
}

func (t DocumentType) Label() string {
	switch t {
	case TypePDF:
		return "PDF"
	case TypeText:
		return "テキスト"
	case TypeWebpage:
		return "ウェブページ"
	case TypeFAQ:
		return "FAQ"
	}
	return t.String()
}

type DocumentStatus int

const (
	StatusProcessing DocumentStatus = iota
	StatusActive
	StatusError
	StatusInactive
)

var documentStatuses = []DocumentStatus{StatusProcessing, StatusActive, StatusError, StatusInactive}

func (s DocumentStatus) String() string {
	switch s {
	case StatusProcessing:
		return "processing"
	case StatusActive:
		return "active"
	case StatusError:
		return "error"
	case StatusInactive:
		return "inactive"
	}
	return fmt.Sprintf("DocumentStatus(%d)", int(s))
}

func (s DocumentStatus) Label() string {
	switch s {
	case StatusProcessing:
		return "処理中"
	case StatusActive:
		return "アクティブ"
	case StatusError:
		return "エラー"
	case StatusInactive:
		return "非アクティブ"
	}
	return s.String()
}

// ParseDocumentType maps a filter string to a type. "all" and "" mean no
// filter and yield nil.
func ParseDocumentType(s string) (*DocumentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return nil, nil
	}
	for _, t := range documentTypes {
		if t.String() == s {
			return &t, nil
		}
	}
	return nil, errors.Errorf("unknown document type %q", s)
}

// ParseDocumentStatus is ParseDocumentType for statuses.
func ParseDocumentStatus(s string) (*DocumentStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return nil, nil
	}
	for _, st := range documentStatuses {
		if st.String() == s {
			return &st, nil
		}
	}
	return nil, errors.Errorf("unknown document status %q", s)
}

type Document struct {
	ID         string
	Title      string
	Type       DocumentType
	UploadedAt time.Time
	UpdatedAt  time.Time
	Size       string
	Status     DocumentStatus
	Tags       []string
}

// Filter narrows the catalog. Nil Type or Status matches every value.
type Filter struct {
	Search string
	Type   *DocumentType
	Status *DocumentStatus
}

func (f Filter) match(d Document) bool {
	if f.Type != nil && d.Type != *f.Type {
		return false
	}
	if f.Status != nil && d.Status != *f.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(d.Title), term) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

type Catalog struct {
	mu   sync.Mutex
	docs []Document
}

func NewCatalog(docs ...Document) *Catalog {
	c := &Catalog{}
	for _, d := range docs {
		d.Tags = append([]string(nil), d.Tags...)
		c.docs = append(c.docs, d)
	}
	return c
}

func DemoCatalog() *Catalog {
	return NewCatalog(
		Document{ID: "1", Title: "製品マニュアルv1.0", Type: TypePDF, UploadedAt: at("2023/03/24 10:30"), UpdatedAt: at("2023/03/24 10:30"), Size: "2.4 MB", Status: StatusActive, Tags: []string{"製品", "マニュアル", "利用ガイド"}},
		Document{ID: "2", Title: "よくある質問と回答", Type: TypeFAQ, UploadedAt: at("2023/03/23 15:45"), UpdatedAt: at("2023/03/25 09:20"), Size: "450 KB", Status: StatusActive, Tags: []string{"FAQ", "サポート"}},
		Document{ID: "3", Title: "技術仕様書", Type: TypePDF, UploadedAt: at("2023/03/22 09:15"), UpdatedAt: at("2023/03/22 09:15"), Size: "5.1 MB", Status: StatusProcessing, Tags: []string{"技術", "仕様", "開発者向け"}},
		Document{ID: "4", Title: "サポートページ", Type: TypeWebpage, UploadedAt: at("2023/03/21 14:30"), UpdatedAt: at("2023/03/21 14:30"), Size: "120 KB", Status: StatusError, Tags: []string{"サポート", "ウェブ"}},
		Document{ID: "5", Title: "利用規約", Type: TypeText, UploadedAt: at("2023/03/20 11:20"), UpdatedAt: at("2023/03/20 11:20"), Size: "320 KB", Status: StatusInactive, Tags: []string{"法的", "規約"}},
	)
}

// List returns the documents matching f in catalog order.
func (c *Catalog) List(f Filter) []Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Document
	for _, d := range c.docs {
		if f.match(d) {
			d.Tags = append([]string(nil), d.Tags...)
			out = append(out, d)
		}
	}
	return out
}

// Toggle flips an active document to inactive and back, returning the
// updated document. Documents that are processing or failed are left alone.
func (c *Catalog) Toggle(id string) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.docs {
		d := &c.docs[i]
		if d.ID != id {
			continue
		}
		switch d.Status {
		case StatusActive:
			d.Status = StatusInactive
		case StatusInactive:
			d.Status = StatusActive
		default:
			return Document{}, errors.Errorf("document %s is %s and cannot be toggled", id, d.Status)
		}
		out := *d
		out.Tags = append([]string(nil), d.Tags...)
		return out, nil
	}
	return Document{}, errors.Errorf("document %s not found", id)
}
