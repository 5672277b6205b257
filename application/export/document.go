// Package export turns a mind map snapshot into portable documents and images.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"mindmapx/domain/core/aggregates"
	"mindmapx/domain/core/valueobjects"
	pkgerrors "mindmapx/pkg/errors"
)

// DocumentVersion is written into every exported document
const DocumentVersion = "1.0"

// Document is the structured export format
type Document struct {
	Nodes    []DocumentNode `json:"nodes"`
	Edges    []DocumentEdge `json:"edges"`
	Metadata Metadata       `json:"metadata"`
}

// DocumentNode is one idea in a document
type DocumentNode struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Position DocumentPosition `json:"position"`
	IsRoot   bool             `json:"isRoot"`
	Color    string           `json:"color,omitempty"`
}

// DocumentPosition is a canvas coordinate
type DocumentPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DocumentEdge links a parent to a child
type DocumentEdge struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// Metadata describes a document
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	NodeCount int       `json:"nodeCount"`
	EdgeCount int       `json:"edgeCount"`
	Version   string    `json:"version"`
}

// ToDocument converts a snapshot. Only the timestamp depends on anything
// but the snapshot.
func ToDocument(snap aggregates.Snapshot, now time.Time) Document {
	doc := Document{
		Nodes: make([]DocumentNode, 0, len(snap.Nodes)),
		Edges: make([]DocumentEdge, 0, len(snap.Edges)),
		Metadata: Metadata{
			Timestamp: now.UTC(),
			NodeCount: len(snap.Nodes),
			EdgeCount: len(snap.Edges),
			Version:   DocumentVersion,
		},
	}
	for _, n := range snap.Nodes {
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:       n.ID.String(),
			Label:    n.Label,
			Position: DocumentPosition{X: n.Position.X(), Y: n.Position.Y()},
			IsRoot:   n.IsRoot,
			Color:    n.Color.String(),
		})
	}
	for _, e := range snap.Edges {
		doc.Edges = append(doc.Edges, DocumentEdge{
			ID:       e.ID.String(),
			SourceID: e.SourceID.String(),
			TargetID: e.TargetID.String(),
		})
	}
	return doc
}

// Marshal encodes the document as indented JSON
func (d Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FileName is the download name used for a document exported at t
func FileName(t time.Time) string {
	return fmt.Sprintf("mindmap-%d.json", t.UnixMilli())
}

// ParseDocument strictly decodes data and checks that it describes a valid tree
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, pkgerrors.NewValidationError(fmt.Sprintf("invalid document: %v", err)).WithCause(err)
	}
	if _, err := doc.Snapshot(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Snapshot converts the document back into a validated snapshot
func (d Document) Snapshot() (aggregates.Snapshot, error) {
	snap := aggregates.Snapshot{
		Nodes: make([]aggregates.NodeSnapshot, 0, len(d.Nodes)),
		Edges: make([]aggregates.EdgeSnapshot, 0, len(d.Edges)),
	}
	verrs := pkgerrors.NewValidationErrors()

	for i, n := range d.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		id, err := valueobjects.NewNodeIDFromString(n.ID)
		if err != nil {
			verrs.Add(field+".id", err.Error())
			continue
		}
		pos, err := valueobjects.NewPosition(n.Position.X, n.Position.Y)
		if err != nil {
			verrs.Add(field, err.Error())
			continue
		}
		color, err := valueobjects.ParseOptionalColor(n.Color)
		if err != nil {
			verrs.Add(field+".color", err.Error())
			continue
		}
		label, err := valueobjects.NewLabel(n.Label)
		if err != nil {
			verrs.Add(field+".label", err.Error())
			continue
		}
		snap.Nodes = append(snap.Nodes, aggregates.NodeSnapshot{
			ID:       id,
			Label:    label.String(),
			Position: pos,
			IsRoot:   n.IsRoot,
			Color:    color,
		})
	}
	for i, e := range d.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		src, err := valueobjects.NewNodeIDFromString(e.SourceID)
		if err != nil {
			verrs.Add(field+".sourceId", err.Error())
			continue
		}
		dst, err := valueobjects.NewNodeIDFromString(e.TargetID)
		if err != nil {
			verrs.Add(field+".targetId", err.Error())
			continue
		}
		id, err := valueobjects.NewEdgeIDFromString(e.ID)
		if err != nil {
			verrs.Add(field+".id", err.Error())
			continue
		}
		snap.Edges = append(snap.Edges, aggregates.EdgeSnapshot{ID: id, SourceID: src, TargetID: dst})
	}

	if d.Metadata.NodeCount != len(d.Nodes) {
		verrs.Add("metadata.nodeCount", fmt.Sprintf("is %d but document has %d nodes", d.Metadata.NodeCount, len(d.Nodes)))
	}
	if d.Metadata.EdgeCount != len(d.Edges) {
		verrs.Add("metadata.edgeCount", fmt.Sprintf("is %d but document has %d edges", d.Metadata.EdgeCount, len(d.Edges)))
	}
	if verrs.HasErrors() {
		return aggregates.Snapshot{}, verrs.AsAppError()
	}

	if err := snap.Validate(); err != nil {
		verr := pkgerrors.NewValidationError("document is not a valid mind map: " + err.Error()).WithCause(err)
		if appErr := pkgerrors.GetAppError(err); appErr != nil {
			verr = verr.WithCode(appErr.Code)
		}
		return aggregates.Snapshot{}, verr
	}
	return snap, nil
}
