package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/plantguardian/plantguard-backend/internal/errors"
	"github.com/plantguardian/plantguard-backend/internal/models"
)

const analysisCollection = "analysis"

// FirebaseService persists analyses in Firestore and, when a bucket is
// configured, archives the submitted images in Cloud Storage.
type FirebaseService struct {
	app    *firebase.App
	db     *firestore.Client
	bucket *storage.BucketHandle
	logger *log.Logger
}

func NewFirebaseService(credentialsFilePath, bucketName string, logger *log.Logger) (*FirebaseService, error) {
	// Initialize Firebase app
	opt := option.WithCredentialsFile(credentialsFilePath)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	// Initialize Firestore client
	db, err := app.Firestore(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error initializing firestore client: %v", err)
	}

	fs := &FirebaseService{
		app:    app,
		db:     db,
		logger: logger,
	}

	if bucketName == "" {
		logger.Printf("No bucket configured, image archival disabled")
		return fs, nil
	}

	storageClient, err := storage.NewClient(context.Background(), opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase storage client: %v", err)
	}
	fs.bucket = storageClient.Bucket(bucketName)

	return fs, nil
}

func (fs *FirebaseService) InsertAnalysis(ctx context.Context, rec models.AnalysisRecord) error {
	if _, err := fs.db.Collection(analysisCollection).Doc(rec.ID).Set(ctx, rec); err != nil {
		return errors.NewStorageError("insert", err)
	}

	fs.logger.Printf("Analysis %s stored (%s, severity %s)", rec.ID, rec.Disease, rec.Severity)
	return nil
}

func (fs *FirebaseService) RecentAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		return []models.AnalysisRecord{}, nil
	}

	iter := fs.db.Collection(analysisCollection).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	records := make([]models.AnalysisRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.NewStorageError("recent query", err)
		}

		var rec models.AnalysisRecord
		if err := doc.DataTo(&rec); err != nil {
			fs.logger.Printf("Skipping undecodable analysis %s: %v", doc.Ref.ID, err)
			continue
		}
		rec.ID = doc.Ref.ID
		records = append(records, rec)
	}

	return records, nil
}

func (fs *FirebaseService) ArchiveImage(ctx context.Context, recordID, imageBase64 string) error {
	if fs.bucket == nil {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return errors.NewStorageError("image decode", err)
	}

	objectName := fmt.Sprintf("analyses/%s/image", recordID)
	wc := fs.bucket.Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		return errors.NewStorageError("image upload", err)
	}
	if err := wc.Close(); err != nil {
		return errors.NewStorageError("image upload", err)
	}

	fs.logger.Printf("Image for analysis %s archived to %s", recordID, objectName)
	return nil
}

func (fs *FirebaseService) Collections(ctx context.Context) ([]string, error) {
	iter := fs.db.Collections(ctx)

	names := []string{}
	for {
		col, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.NewStorageError("collection listing", err)
		}
		names = append(names, col.ID)
	}

	return names, nil
}

func (fs *FirebaseService) Available() bool {
	return true
}
