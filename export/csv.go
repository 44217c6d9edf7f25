package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"tem/material"
	"tem/mesh"
	"tem/model"
)

var header = []string{"Node ID", "XPOS", "YPOS", "Material"}

// Code is the integer material tag used by the visualisation scripts.
func Code(name string) int {
	switch name {
	case material.Copper:
		return 1
	case material.BiTe:
		return 2
	case material.Ceramic:
		return 3
	case material.Air:
		return 4
	}
	return 0
}

// Records lists the mesh nodes in arena order.
func Records(m *mesh.Mesh) []model.NodeRecord {
	recs := make([]model.NodeRecord, len(m.Nodes))
	for i, n := range m.Nodes {
		recs[i] = model.NodeRecord{
			ID:       n.ID,
			X:        n.X,
			Y:        n.Y,
			Material: n.Material,
			Code:     Code(n.Material),
			Phi:      n.Phi,
		}
	}
	return recs
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per node, with a Temperature column when
// temperature is set.
func WriteCSV(w io.Writer, recs []model.NodeRecord, temperature bool) error {
	cw := csv.NewWriter(w)
	h := header
	if temperature {
		h = append(append([]string(nil), header...), "Temperature")
	}
	if err := cw.Write(h); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range recs {
		row := []string{strconv.Itoa(r.ID), formatFloat(r.X), formatFloat(r.Y), strconv.Itoa(r.Code)}
		if temperature {
			row = append(row, formatFloat(r.Phi))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write node %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
