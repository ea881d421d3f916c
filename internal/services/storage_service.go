// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/nexpoint/nexpoint-backend/internal/config"
)

// StorageService retains rendered invoice documents, content-addressed by
// order number. Documents always land on the local filesystem; when AWS
// credentials are configured they are mirrored to S3 as well so a failed
// local disk does not lose the retry source.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if err := os.MkdirAll(cfg.Invoice.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create invoice directory: %w", err)
	}

	if cfg.AWS.AccessKeyID == "" {
		// Local-only storage for development
		return &StorageService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// SaveInvoice writes the document under "<orderNumber>.pdf" and returns the
// storage key.
func (s *StorageService) SaveInvoice(orderNumber string, document []byte) (string, error) {
	key := orderNumber + ".pdf"

	path := filepath.Join(s.config.Invoice.Dir, key)
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return "", fmt.Errorf("failed to write invoice: %w", err)
	}

	if s.s3Client != nil {
		_, err := s.s3Client.PutObject(&s3.PutObjectInput{
			Bucket:        aws.String(s.config.AWS.S3Bucket),
			Key:           aws.String("invoices/" + key),
			Body:          bytes.NewReader(document),
			ContentType:   aws.String("application/pdf"),
			ContentLength: aws.Int64(int64(len(document))),
		})
		if err != nil {
			// The local copy is authoritative for redelivery; a failed mirror
			// is an operational warning, not a dispatch failure.
			logrus.WithFields(logrus.Fields{
				"order_number": orderNumber,
				"error":        err,
			}).Warn("Failed to mirror invoice to S3")
		}
	}

	return key, nil
}

// LoadInvoice reads a retained document back for download or redelivery.
func (s *StorageService) LoadInvoice(orderNumber string) ([]byte, error) {
	path := filepath.Join(s.config.Invoice.Dir, orderNumber+".pdf")
	document, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, orderNumber)
		}
		return nil, fmt.Errorf("failed to read invoice: %w", err)
	}
	return document, nil
}
