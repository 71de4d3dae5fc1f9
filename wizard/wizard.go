// Package wizard holds the five-step application draft an applicant fills in
// before submitting.
package wizard

import (
	"strings"
	"sync"

	"bursary-portal-backend/apperrors"
)

// Wizard is one applicant's in-progress draft. It is safe for concurrent use.
type Wizard struct {
	mu        sync.Mutex
	step      int
	fields    map[Field]string
	documents map[DocumentType]File
	submitted bool
}

func New() *Wizard {
	return &Wizard{
		step:      FirstStep,
		fields:    make(map[Field]string),
		documents: make(map[DocumentType]File),
	}
}

func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// MarkSubmitted freezes the draft.
func (w *Wizard) MarkSubmitted() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitted = true
}

// SetField assigns a draft value. Changing the county clears the sub-county
// because sub-counties are scoped to their county.
func (w *Wizard) SetField(name string, value string) error {
	field, ok := ParseField(name)
	if !ok {
		return apperrors.Validation("Unknown field %q", name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitted {
		return apperrors.Validation("Application has already been submitted")
	}

	w.fields[field] = value
	if field == County {
		w.fields[SubCounty] = ""
	}
	return nil
}

func (w *Wizard) Field(field Field) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields[field]
}

// Fields returns a copy of every draft value.
func (w *Wizard) Fields() map[Field]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[Field]string, len(w.fields))
	for k, v := range w.fields {
		out[k] = v
	}
	return out
}

// AttachDocument sets the file for a slot and returns the file it replaced.
func (w *Wizard) AttachDocument(docType DocumentType, file File) (File, error) {
	docType, ok := ParseDocumentType(string(docType))
	if !ok {
		return nil, apperrors.Validation("Unknown document type %q", docType)
	}
	if file == nil {
		return nil, apperrors.Validation("A file is required for %s", docType.Label())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitted {
		return nil, apperrors.Validation("Application has already been submitted")
	}

	previous := w.documents[docType]
	w.documents[docType] = file
	return previous, nil
}

// DetachDocument empties a slot and returns the file that was in it.
func (w *Wizard) DetachDocument(docType DocumentType) (File, error) {
	docType, ok := ParseDocumentType(string(docType))
	if !ok {
		return nil, apperrors.Validation("Unknown document type %q", docType)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitted {
		return nil, apperrors.Validation("Application has already been submitted")
	}

	previous := w.documents[docType]
	delete(w.documents, docType)
	return previous, nil
}

// Documents returns a copy of the attached files.
func (w *Wizard) Documents() map[DocumentType]File {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[DocumentType]File, len(w.documents))
	for k, v := range w.documents {
		out[k] = v
	}
	return out
}

// ValidateStep reports whether every required item of step is present.
// Steps outside 1..5 never validate.
func (w *Wizard) ValidateStep(step int) bool {
	if _, ok := stepAt(step); !ok {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.missing(step)) == 0
}

// MissingFields names the required items of step that are still empty.
func (w *Wizard) MissingFields(step int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.missing(step)
}

func (w *Wizard) missing(step int) []string {
	s, ok := stepAt(step)
	if !ok {
		return nil
	}

	var missing []string
	for _, f := range s.Fields {
		if strings.TrimSpace(w.fields[f]) == "" {
			missing = append(missing, string(f))
		}
	}
	for _, d := range s.Documents {
		if w.documents[d] == nil {
			missing = append(missing, string(d))
		}
	}
	return missing
}

func incompleteStep(step int, missing []string) *apperrors.Error {
	s, _ := stepAt(step)
	err := apperrors.Validation("Please complete step %d (%s)", step, s.Title)
	err.Detail = "missing: " + strings.Join(missing, ", ")
	return err
}

// Advance moves to the next step once the current one is complete.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if missing := w.missing(w.step); len(missing) > 0 {
		return incompleteStep(w.step, missing)
	}
	if w.step < LastStep {
		w.step++
	}
	return nil
}

// Retreat moves back one step without validation.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step > FirstStep {
		w.step--
	}
}

// ValidateAll reports the first incomplete step.
func (w *Wizard) ValidateAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for step := FirstStep; step <= LastStep; step++ {
		if missing := w.missing(step); len(missing) > 0 {
			return incompleteStep(step, missing)
		}
	}
	return nil
}

type DocumentInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Snapshot is the JSON view of a draft.
type Snapshot struct {
	Step          int                           `json:"step"`
	Steps         []Step                        `json:"steps"`
	StepsComplete []bool                        `json:"steps_complete"`
	Fields        map[Field]string              `json:"fields"`
	Documents     map[DocumentType]DocumentInfo `json:"documents"`
	Submitted     bool                          `json:"submitted"`
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		Step:      w.step,
		Steps:     Steps,
		Fields:    make(map[Field]string, len(w.fields)),
		Documents: make(map[DocumentType]DocumentInfo, len(w.documents)),
		Submitted: w.submitted,
	}
	for k, v := range w.fields {
		snap.Fields[k] = v
	}
	for k, f := range w.documents {
		snap.Documents[k] = DocumentInfo{Name: f.Name(), Size: f.Size()}
	}
	for step := FirstStep; step <= LastStep; step++ {
		snap.StepsComplete = append(snap.StepsComplete, len(w.missing(step)) == 0)
	}
	return snap
}
