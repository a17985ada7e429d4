package handler

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
)

// schemaVersion gates catalog dumps: imports from a different version are
// rejected instead of silently misread.
const schemaVersion = 1

// Export handles GET /api/admin/export, streaming the whole catalog as one
// JSON document without buffering it in memory.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	props, err := h.catalog.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="props_export.json"`)
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)
	e := jx.NewStreamingEncoder(bw, -1)
	encodeExport(e, props, time.Now())
	if err := e.Close(); err != nil {
		zctx.From(r.Context()).Warn("streaming export", zap.Error(err))
		return
	}
	if err := bw.Flush(); err != nil {
		zctx.From(r.Context()).Warn("flushing export", zap.Error(err))
	}
}

// encodeExport writes the export document onto the encoder.
func encodeExport(e *jx.Encoder, props []catalog.Prop, exportedAt time.Time) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("schema_version", func(e *jx.Encoder) { e.Int(schemaVersion) })
		e.Field("exported_at", func(e *jx.Encoder) { e.Str(exportedAt.UTC().Format(time.RFC3339)) })
		e.Field("props", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range props {
					encodeProp(e, &props[i])
				}
			})
		})
	})
}

func encodeProp(e *jx.Encoder, p *catalog.Prop) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price.String()) })
		e.Field("print_cost", func(e *jx.Encoder) { e.Str(p.PrintCost.String()) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("images", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, img := range p.Images {
					e.Str(img.URL)
				}
			})
		})
	})
}

// importRequest is the wire shape of a catalog dump.
type importRequest struct {
	SchemaVersion int           `json:"schema_version"`
	Props         []propRequest `json:"props"`
}

// importResponse reports how many props the import installed.
type importResponse struct {
	Imported int `json:"imported"`
}

// Import handles POST /api/admin/import, atomically replacing the catalog
// with the uploaded dump. Gzip-compressed uploads are detected and unpacked
// transparently.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := maybeGunzip(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req importRequest
	if err := parseImport(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SchemaVersion != schemaVersion {
		writeError(w, r, http.StatusBadRequest, "unsupported schema version")
		return
	}

	inputs := make([]catalog.PropInput, 0, len(req.Props))
	for _, p := range req.Props {
		if msg := p.validate(); msg != "" {
			writeError(w, r, http.StatusBadRequest, msg)
			return
		}
		inputs = append(inputs, p.toInput())
	}

	if err := h.catalog.ReplaceAll(r.Context(), inputs); err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, importResponse{Imported: len(inputs)})
}

func parseImport(body io.Reader, v *importRequest) error {
	return json.NewDecoder(body).Decode(v)
}

// maybeGunzip returns a reader over the request body, unpacking it when the
// client declared gzip or the payload starts with the gzip magic bytes.
func maybeGunzip(r *http.Request) (io.Reader, error) {
	if r.Header.Get("Content-Encoding") == "gzip" {
		return pgzip.NewReader(r.Body)
	}

	br := bufio.NewReader(r.Body)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		return pgzip.NewReader(br)
	}
	return br, nil
}
