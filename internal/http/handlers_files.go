package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"pocket/internal/backup"
	applog "pocket/internal/log"
	"pocket/internal/report"
)

// handleReport renders the ledger between the optional start and end days.
func (s *Server) handleReport(format report.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := ParseRange(r.URL.Query(), s.loc)
		if err != nil {
			ErrorFor(err).Write(w)
			return
		}
		doc, err := s.reports.Export(r.Context(), format, start, end)
		if err != nil {
			if !errors.Is(err, report.ErrEmptyReport) {
				s.logFailure(r, "Failed to render report", applog.OpRender, err)
			}
			ErrorFor(err).Write(w)
			return
		}
		s.appMetrics.inc(&s.appMetrics.reportsServed)
		name := report.FileName(string(format), s.now().In(s.loc))
		NewResponse().
			Header("Content-Type", format.ContentType()).
			Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name})).
			Body(doc).
			Write(w)
	}
}

// handleBackupExport downloads the three stored entries as one JSON file.
func (s *Server) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	b, err := s.backup.Export(r.Context())
	if err != nil {
		s.logFailure(r, "Failed to export backup", applog.OpExport, err)
		ErrorFor(err).Write(w)
		return
	}
	var buf bytes.Buffer
	if err := backup.WriteJSON(&buf, b); err != nil {
		s.logFailure(r, "Failed to encode backup", applog.OpExport, err)
		InternalServerError("internal error").Write(w)
		return
	}
	name := "pocket-backup-" + s.now().In(s.loc).Format("2006-01-02") + ".json"
	NewResponse().
		Header("Content-Type", "application/json; charset=utf-8").
		Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name})).
		Body(buf.Bytes()).
		Write(w)
}

// handleBackupImport restores a backup sent either as the raw JSON body or
// as the "file" field of a multipart upload.
func (s *Server) handleBackupImport(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = io.LimitReader(r.Body, maxBodyBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			BadRequestError("invalid upload").Write(w)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			ErrorFor(fieldError("file", "is required")).Write(w)
			return
		}
		defer f.Close()
		body = io.LimitReader(f, maxBodyBytes)
	}

	b, err := backup.ReadJSON(body)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	if err := s.backup.Import(r.Context(), b); err != nil {
		if !isValidation(err) {
			s.logFailure(r, "Failed to import backup", applog.OpImport, err)
		}
		ErrorFor(err).Write(w)
		return
	}
	s.appMetrics.inc(&s.appMetrics.backupsLoaded)
	NewResponse().
		TriggerLedgerChanged(s.txs.Revision()).
		TriggerProfileChanged().
		JSON(map[string]string{"status": "imported"}).
		Write(w)
}
