package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

var (
	// ErrUnsupportedFile is returned for Drive files that are not spreadsheets.
	ErrUnsupportedFile = errors.New("drive file is not a spreadsheet")
	// ErrFolderNotFound is returned when a folder path cannot be resolved.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrFileTooLarge is returned when a download exceeds the size limit.
	ErrFileTooLarge = errors.New("drive file too large")
)

// Client is the part of the Drive API the ingest service needs.
type Client interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	ExportFile(ctx context.Context, fileID, mimeType string, w io.Writer) error
}

// Uploader commits one file through the ingestion pipeline.
type Uploader interface {
	Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error)
}

// FolderResult reports one file of a folder ingest.
type FolderResult struct {
	FileID string                `json:"fileId"`
	Name   string                `json:"name"`
	Result *service.UploadResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

type IngestService struct {
	client   Client
	uploader Uploader
	maxBytes int64
}

func NewIngestService(client Client, uploader Uploader, maxBytes int64) *IngestService {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &IngestService{
		client:   client,
		uploader: uploader,
		maxBytes: maxBytes,
	}
}

// IngestFile downloads one Drive spreadsheet and commits it as an upload
// batch. Google Sheets documents are exported as xlsx first.
func (s *IngestService) IngestFile(ctx context.Context, fileID, area string) (*service.UploadResult, error) {
	file, err := s.client.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, file, area)
}

// IngestFolder ingests every spreadsheet in the folder. Files without valid
// rows or that fail to decode are reported per file and do not stop the run.
func (s *IngestService) IngestFolder(ctx context.Context, folderID, area string) ([]FolderResult, error) {
	files, err := s.client.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	results := make([]FolderResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !isSpreadsheet(f) {
			continue
		}

		entry := FolderResult{FileID: f.ID, Name: f.Name}
		result, err := s.ingest(ctx, f, area)
		if err != nil {
			if errors.Is(err, service.ErrUnknownArea) {
				return results, err
			}
			log.Warn().Err(err).Str("drive_file", f.Name).Msg("Drive file not ingested")
			entry.Error = err.Error()
		} else {
			entry.Result = result
		}
		results = append(results, entry)
	}

	return results, nil
}

func (s *IngestService) ingest(ctx context.Context, file *File, area string) (*service.UploadResult, error) {
	if !isSpreadsheet(file) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFile, file.Name, file.MimeType)
	}

	name := file.Name
	contentType := file.MimeType
	buf := &limitedBuffer{max: s.maxBytes}

	if file.MimeType == MimeGoogleSheet {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
		contentType = sales.MimeXLSX
		if err := s.client.ExportFile(ctx, file.ID, sales.MimeXLSX, buf); err != nil {
			return nil, err
		}
	} else {
		if ct := sales.MimeTypeForExtension(name); ct != "" {
			contentType = ct
		}
		if err := s.client.DownloadFile(ctx, file.ID, buf); err != nil {
			return nil, err
		}
	}

	log.Info().Str("drive_file", file.Name).Int("bytes", buf.Len()).Msg("Downloaded Drive file")

	return s.uploader.Upload(ctx, service.UploadInput{
		Filename:    name,
		ContentType: contentType,
		Data:        buf.Bytes(),
		Area:        area,
		Source:      "drive",
	})
}

func isSpreadsheet(f *File) bool {
	if f.MimeType == MimeGoogleSheet {
		return true
	}
	return sales.MimeTypeForExtension(f.Name) != ""
}

// limitedBuffer fails writes once more than max bytes were written. The
// buffer is a named field so io.Copy cannot bypass Write through ReadFrom.
type limitedBuffer struct {
	buf bytes.Buffer
	max int64
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len()+len(p)) > b.max {
		return 0, ErrFileTooLarge
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Len() int      { return b.buf.Len() }
func (b *limitedBuffer) Bytes() []byte { return b.buf.Bytes() }
