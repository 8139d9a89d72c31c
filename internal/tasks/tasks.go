package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/services"
	"github.com/mmtukut/propabridge-2/internal/sms"
)

// TaskType defines the type of a background task.
const (
	TypeSmsDeliver   = "sms:deliver"
	TypeImageProcess = "image:process"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// SmsTaskPayload carries one outbound text message.
type SmsTaskPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// ImageTaskPayload identifies an uploaded photo awaiting normalization.
type ImageTaskPayload struct {
	S3Key     string `json:"s3_key"`
	ListingID int64  `json:"listing_id"`
}

// Enqueuer wraps the asynq client with typed enqueue helpers. It is the
// production services.OTPDeliverer: verification codes go out as queued SMS
// tasks rather than inline HTTP calls.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// DeliverOTP enqueues the verification text on the critical queue.
func (e *Enqueuer) DeliverOTP(ctx context.Context, phone, message string) error {
	return e.EnqueueSms(ctx, phone, message, asynq.Queue("critical"))
}

// EnqueueSms schedules an SMS delivery task.
func (e *Enqueuer) EnqueueSms(ctx context.Context, to, message string, opts ...asynq.Option) error {
	payload, err := json.Marshal(SmsTaskPayload{To: to, Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal sms task payload: %w", err)
	}
	task := asynq.NewTask(TypeSmsDeliver, payload)
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue sms task for %s: %w", to, err)
	}
	return nil
}

// EnqueueImageProcess schedules normalization of an uploaded listing photo.
func (e *Enqueuer) EnqueueImageProcess(ctx context.Context, listingID int64, s3Key string) error {
	payload, err := json.Marshal(ImageTaskPayload{S3Key: s3Key, ListingID: listingID})
	if err != nil {
		return fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	task := asynq.NewTask(TypeImageProcess, payload, asynq.Queue("images"))
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue image task for listing %d: %w", listingID, err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	smsSender      sms.Sender
	listingService services.IListingService
	s3Client       *s3.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	smsSender sms.Sender,
	listingService services.IListingService,
	s3Client *s3.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		smsSender:      smsSender,
		listingService: listingService,
		s3Client:       s3Client,
	}
}

// SetupServer configures an Asynq server with the task handlers registered.
// The caller runs it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"images":   5,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSmsDeliver, processor.HandleSmsDeliverTask)
	mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)

	return srv, mux
}

// --- Task Handlers ---

// HandleSmsDeliverTask sends one queued text message.
func (p *TaskProcessor) HandleSmsDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload SmsTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal sms task payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.smsSender.Send(ctx, payload.To, payload.Message); err != nil {
		log.Printf("SMS delivery to %s failed (will retry): %v", payload.To, err)
		return err
	}

	log.Printf("SMS task processed: To=%s", payload.To)
	return nil
}

// HandleImageProcessTask normalizes an uploaded listing photo: downloads it,
// resizes it to fit within the configured max dimension, re-encodes as JPEG,
// overwrites the object and attaches the key to the listing.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s, ListingID=%d", payload.S3Key, payload.ListingID)

	getObjectOutput, err := p.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.AwsS3Bucket),
		Key:    aws.String(payload.S3Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Printf("S3 object %s not found, likely upload failed or key incorrect.", payload.S3Key)
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image from S3: %w", err)
	}
	defer getObjectOutput.Body.Close()

	imgData, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data for %s: %w", payload.S3Key, err)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding image for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded image %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.ImageMaxDimension)
	needsResize := uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim

	processedImageData := imgData
	contentType := "image/jpeg"
	if getObjectOutput.ContentType != nil {
		contentType = *getObjectOutput.ContentType
	}

	if needsResize {
		resizedImg := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image %s: %w", payload.S3Key, err)
		}
		processedImageData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized image %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())
	}

	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.AwsS3Bucket),
		Key:         aws.String(payload.S3Key),
		Body:        bytes.NewReader(processedImageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload processed image %s: %w", payload.S3Key, err)
	}

	if err := p.listingService.AddImageToListing(ctx, payload.ListingID, payload.S3Key); err != nil {
		return fmt.Errorf("failed to update listing %d with processed image: %w", payload.ListingID, err)
	}

	log.Printf("Image task processed: Key=%s, ListingID=%d", payload.S3Key, payload.ListingID)
	return nil
}
