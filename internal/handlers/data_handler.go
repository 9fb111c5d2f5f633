// File: internal/handlers/data_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-kbshell/internal/azurefn"
	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/logging"
)

// DocumentService is the ingestion API as seen by the handlers.
type DocumentService interface {
	ListIngestedData(ctx context.Context) ([]domain.IngestedDataInfo, error)
	GetDocumentDetails(ctx context.Context, id string) (*domain.IngestedDataInfo, error)
	DeleteDocument(ctx context.Context, id string) error
}

type DataHandler struct {
	docs   DocumentService
	logger logging.Logger
}

func NewDataHandler(docs DocumentService, logger logging.Logger) *DataHandler {
	return &DataHandler{docs: docs, logger: logger}
}

// ListDocuments returns every ingested document.
func (h *DataHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListIngestedData(r.Context())
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	if docs == nil {
		docs = []domain.IngestedDataInfo{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument returns one document's details.
func (h *DataHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.GetDocumentDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document from the ingestion store.
func (h *DataHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.docs.DeleteDocument(r.Context(), id); err != nil {
		h.fail(w, "delete", err)
		return
	}
	h.logger.Info("document deleted", "document_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *DataHandler) fail(w http.ResponseWriter, op string, err error) {
	status, msg := remoteStatus(err)
	h.logger.Warn("ingestion API call failed", "op", op, "status", status, "error", err)
	writeError(w, msg, status)
}

// remoteStatus maps proxy errors onto the status the browser should see.
func remoteStatus(err error) (int, string) {
	var rce *azurefn.RemoteCallError
	var te *azurefn.TransportError
	var de *azurefn.DecodeError
	switch {
	case errors.Is(err, azurefn.ErrEmptyDocumentID):
		return http.StatusBadRequest, "Document id is required"
	case errors.As(err, &rce):
		if rce.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, "Document not found"
		}
		return http.StatusBadGateway, "Ingestion service returned " + rce.StatusText
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Ingestion service timed out"
	case errors.As(err, &te):
		return http.StatusBadGateway, "Ingestion service unreachable"
	case errors.As(err, &de):
		return http.StatusBadGateway, "Ingestion service returned an invalid response"
	default:
		return http.StatusInternalServerError, "Could not reach ingestion service"
	}
}
