// Package form holds the state machine behind the "post your ad" form: draft
// edits, image attachments with their previews, field errors and submission.
package form

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propertyad/internal/model"
	"propertyad/internal/schema"
)

// State is the submission state of a form.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

// Preview status per attachment
const (
	PreviewPending = "pending"
	PreviewReady   = "ready"
	PreviewFailed  = "failed"
)

// Notices shown after a submission completes
const (
	NoticePosted       = "Property ad posted successfully!"
	NoticeSubmitFailed = "Could not post your ad. Please try again."
)

// Submitter hands a validated listing to whatever backs the form and returns its id.
type Submitter interface {
	SubmitListing(ctx context.Context, listing *model.Listing) (string, error)
}

// Previewer renders a displayable preview for an accepted image.
type Previewer interface {
	Preview(ctx context.Context, file model.ImageFile) (string, error)
}

// Result describes a finished submission.
type Result struct {
	FormID    string
	ListingID string
	Listing   *model.Listing
	Err       error
}

// Config wires a Controller to its collaborators.
type Config struct {
	Schema    *schema.Schema
	Submitter Submitter
	Previewer Previewer
	Logger    *zap.Logger

	// OnSubmitted is called after each submission completes, outside the form lock.
	OnSubmitted func(Result)
}

type attachment struct {
	meta    model.ImageMeta
	preview string
	status  string
	cancel  context.CancelFunc
}

// Controller owns the mutable state of one form instance.
// Preview rendering and submission completion run on their own goroutines and
// re-enter through the mutex.
type Controller struct {
	id  string
	cfg Config
	log *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	draft       model.Draft
	attachments []*attachment
	errors      map[string]string
	state       State
	notice      string
	lastActive  time.Time
}

// New creates a form in the Editing state with an empty draft.
func New(id string, cfg Config) *Controller {
	if cfg.Schema == nil {
		cfg.Schema = schema.New()
	}
	if cfg.Previewer == nil {
		cfg.Previewer = NewImagePreviewer(0, 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		id:         id,
		cfg:        cfg,
		log:        cfg.Logger.With(zap.String("form_id", id)),
		ctx:        ctx,
		cancel:     cancel,
		errors:     make(map[string]string),
		state:      StateEditing,
		lastActive: time.Now(),
	}
}

// ID returns the form id.
func (c *Controller) ID() string { return c.id }

// EditField sets a draft value from its raw text and clears that field's error.
// Numeric fields keep the leading integer of raw, or 0 when there is none.
// Edits are accepted while a submission is in flight.
func (c *Controller) EditField(field model.Field, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := setField(&c.draft, field, raw); err != nil {
		return err
	}
	delete(c.errors, string(field))
	c.touch()
	return nil
}

func setField(d *model.Draft, field model.Field, raw string) error {
	if model.IsNumericField(field) {
		n := leadingInt(raw)
		switch field {
		case model.FieldSuperBuiltupArea:
			d.SuperBuiltupArea = &n
		case model.FieldCarpetArea:
			d.CarpetArea = &n
		case model.FieldMaintenance:
			d.Maintenance = &n
		case model.FieldTotalFloors:
			d.TotalFloors = &n
		case model.FieldFloorNo:
			d.FloorNo = &n
		case model.FieldPrice:
			d.Price = &n
		}
		return nil
	}

	v := raw
	switch field {
	case model.FieldType:
		d.Type = &v
	case model.FieldBHK:
		d.BHK = &v
	case model.FieldBathrooms:
		d.Bathrooms = &v
	case model.FieldFurnishing:
		d.Furnishing = &v
	case model.FieldProjectStatus:
		d.ProjectStatus = &v
	case model.FieldListedBy:
		d.ListedBy = &v
	case model.FieldCarParking:
		d.CarParking = &v
	case model.FieldFacing:
		d.Facing = &v
	case model.FieldProjectName:
		d.ProjectName = &v
	case model.FieldAdTitle:
		d.AdTitle = &v
	case model.FieldDescription:
		d.Description = &v
	case model.FieldState:
		d.State = &v
	default:
		return model.ErrUnknownField
	}
	return nil
}

// leadingInt parses an optional sign and the digits that follow it, ignoring the rest.
func leadingInt(raw string) int64 {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// AddImages filters the batch by content kind and size, then appends what is
// left unless that would exceed MaxImageCount, in which case nothing is added.
// It returns how many files were accepted.
func (c *Controller) AddImages(files []model.ImageFile) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	accepted := make([]model.ImageFile, 0, len(files))
	for _, f := range files {
		if model.IsAcceptableImage(f) {
			accepted = append(accepted, f)
		}
	}

	if len(c.attachments)+len(accepted) > model.MaxImageCount {
		c.errors[string(model.FieldImages)] = model.MsgTooManyImages
		c.log.Debug("image batch over cap",
			zap.Int("existing", len(c.attachments)), zap.Int("incoming", len(accepted)))
		return 0, model.ErrTooManyImages
	}

	for _, f := range accepted {
		c.attach(f)
	}
	c.syncDraftImages()

	if rejected := len(files) - len(accepted); rejected > 0 {
		c.errors[string(model.FieldImages)] = model.MsgImagesRejected
		c.log.Debug("images rejected", zap.Int("rejected", rejected), zap.Int("accepted", len(accepted)))
		return len(accepted), model.ErrImagesRejected
	}
	delete(c.errors, string(model.FieldImages))
	return len(accepted), nil
}

// attach must be called with c.mu held.
func (c *Controller) attach(f model.ImageFile) {
	ctx, cancel := context.WithCancel(c.ctx)
	att := &attachment{
		meta: model.ImageMeta{
			ID:          uuid.NewString(),
			Name:        f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
		},
		status: PreviewPending,
		cancel: cancel,
	}
	c.attachments = append(c.attachments, att)

	c.wg.Add(1)
	go c.renderPreview(ctx, att.meta.ID, f)
}

// renderPreview stores the preview on the attachment with the given id, wherever it
// sits by then. Results for attachments that were removed meanwhile are dropped.
func (c *Controller) renderPreview(ctx context.Context, id string, f model.ImageFile) {
	defer c.wg.Done()

	preview, err := c.cfg.Previewer.Preview(ctx, f)
	if errors.Is(err, context.Canceled) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	att := c.findAttachment(id)
	if att == nil {
		return
	}
	att.cancel()
	if err != nil {
		att.status = PreviewFailed
		c.log.Warn("preview failed", zap.String("attachment_id", id), zap.Error(err))
		return
	}
	att.preview = preview
	att.status = PreviewReady
}

func (c *Controller) findAttachment(id string) *attachment {
	for _, att := range c.attachments {
		if att.meta.ID == id {
			return att
		}
	}
	return nil
}

// RemoveImage drops the attachment and its preview at index.
// It reports false and changes nothing when index is out of range.
func (c *Controller) RemoveImage(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.attachments) {
		return false
	}
	c.attachments[index].cancel()
	c.attachments = append(c.attachments[:index], c.attachments[index+1:]...)
	c.syncDraftImages()
	c.touch()
	return true
}

func (c *Controller) syncDraftImages() {
	metas := make([]model.ImageMeta, len(c.attachments))
	for i, att := range c.attachments {
		metas[i] = att.meta
	}
	c.draft.Images = metas
}

// Submit validates the draft. On failure the error map is replaced and a
// *schema.ValidationFailure is returned. On success the form moves to
// Submitting and the listing is handed to the Submitter in the background;
// when that finishes the form resets. A submission cannot be cancelled.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.state == StateSubmitting {
		return model.ErrFormSubmitting
	}
	c.notice = ""

	listing, err := c.cfg.Schema.Validate(c.draft.Clone())
	if err != nil {
		var failure *schema.ValidationFailure
		if errors.As(err, &failure) {
			c.errors = failure.ErrorMap()
		}
		return err
	}

	c.errors = make(map[string]string)
	c.state = StateSubmitting
	c.log.Info("submitting listing", zap.String("ad_title", listing.AdTitle), zap.Int("images", len(listing.Images)))

	c.wg.Add(1)
	go c.complete(context.WithoutCancel(ctx), listing)
	return nil
}

func (c *Controller) complete(ctx context.Context, listing *model.Listing) {
	defer c.wg.Done()

	var (
		listingID string
		err       error
	)
	if c.cfg.Submitter != nil {
		listingID, err = c.cfg.Submitter.SubmitListing(ctx, listing)
	}

	c.mu.Lock()
	if err != nil {
		c.state = StateEditing
		c.notice = NoticeSubmitFailed
		c.log.Error("submit listing failed", zap.Error(err))
	} else {
		listing.ID = listingID
		c.log.Info(NoticePosted, zap.String("listing_id", listingID))
		c.log.Debug("submitted listing", zap.Any("listing", listing))
		c.reset()
		c.notice = NoticePosted
	}
	c.touch()
	c.mu.Unlock()

	if c.cfg.OnSubmitted != nil {
		c.cfg.OnSubmitted(Result{FormID: c.id, ListingID: listingID, Listing: listing, Err: err})
	}
}

// reset must be called with c.mu held.
func (c *Controller) reset() {
	for _, att := range c.attachments {
		att.cancel()
	}
	c.attachments = nil
	c.draft = model.Draft{}
	c.errors = make(map[string]string)
	c.state = StateEditing
}

// Wait blocks until pending previews and any in-flight submission have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels pending previews and waits for background work.
// An in-flight submission still runs to completion.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IdleSince returns when the form was last changed.
func (c *Controller) IdleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) touch() {
	c.lastActive = time.Now()
}

// ImageView is an attachment as the form renders it.
type ImageView struct {
	model.ImageMeta
	Preview       string `json:"preview,omitempty"`
	PreviewStatus string `json:"preview_status"`
}

// Counter is a "used / max" character counter for a length-limited text field.
type Counter struct {
	Field  model.Field `json:"field"`
	Length int         `json:"length"`
	Max    int         `json:"max"`
}

// Snapshot is a consistent copy of the form state for rendering.
type Snapshot struct {
	ID       string            `json:"id"`
	State    State             `json:"state"`
	Draft    model.Draft       `json:"draft"`
	Images   []ImageView       `json:"images"`
	Errors   map[string]string `json:"errors"`
	Counters []Counter         `json:"counters"`
	Notice   string            `json:"notice,omitempty"`
}

// Snapshot returns the current form state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	images := make([]ImageView, len(c.attachments))
	for i, att := range c.attachments {
		images[i] = ImageView{ImageMeta: att.meta, Preview: att.preview, PreviewStatus: att.status}
	}
	errs := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}

	return Snapshot{
		ID:     c.id,
		State:  c.state,
		Draft:  c.draft.Clone(),
		Images: images,
		Errors: errs,
		Counters: []Counter{
			{Field: model.FieldProjectName, Length: runeLen(c.draft.ProjectName), Max: model.MaxProjectNameLength},
			{Field: model.FieldAdTitle, Length: runeLen(c.draft.AdTitle), Max: model.MaxAdTitleLength},
			{Field: model.FieldDescription, Length: runeLen(c.draft.Description), Max: model.MaxDescriptionLength},
		},
		Notice: c.notice,
	}
}

func runeLen(p *string) int {
	if p == nil {
		return 0
	}
	return utf8.RuneCountInString(*p)
}
