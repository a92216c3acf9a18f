package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openqbank/qbank/internal/bank"
	"github.com/openqbank/qbank/internal/bank/extract"
	"github.com/openqbank/qbank/internal/rbac"
)

const maxImportBytes = 20 << 20 // 20 MiB upload cap

// ImportQuestionsHandler accepts either a multipart upload (field
// "file", format chosen by extension) or a raw JSON array of normalized
// records, and feeds the result through the batch importer.
func ImportQuestionsHandler(store *bank.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var records []bank.NormalizedRecord

		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(maxImportBytes); err != nil {
				http.Error(w, "bad multipart body", 400)
				return
			}
			f, hdr, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", 400)
				return
			}
			defer f.Close()

			ex := extract.ForFilename(hdr.Filename)
			if ex == nil {
				http.Error(w, "unsupported file type: "+hdr.Filename, 400)
				return
			}
			records, err = ex.Parse(f)
			if err != nil {
				http.Error(w, "parse failed: "+err.Error(), 400)
				return
			}

			// Defaults from the form fill fields the file format lacks
			// (the text extractor has no curriculum columns).
			applyDefaults(records,
				r.FormValue("classname"),
				r.FormValue("subject"),
				r.FormValue("chapter"))
		} else {
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&records); err != nil {
				http.Error(w, "expected a JSON array of records", 400)
				return
			}
		}

		sum, err := store.ImportBatch(r.Context(), records, rbac.UserIDFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, sum)
	}
}

func applyDefaults(records []bank.NormalizedRecord, classname, subject, chapter string) {
	for i := range records {
		if records[i].Classname == "" {
			records[i].Classname = classname
		}
		if records[i].Subject == "" {
			records[i].Subject = subject
		}
		if records[i].Chapter == "" {
			records[i].Chapter = chapter
		}
	}
}
