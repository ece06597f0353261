package model

import "time"

// DisplayTimeLayout is the en-US locale string the mobile client renders.
const DisplayTimeLayout = "1/2/2006, 3:04:05 PM"

const (
	MessageImagePublished       = "Image published successfully!"
	MessageImageDeleted         = "Image deleted successfully!"
	MessageProfileImageUploaded = "Profile image uploaded successfully!"
	MessageProfileImageDeleted  = "Profile image deleted successfully!"
)

const (
	FeedImageDirectory    = "feed-images"
	ProfileImageDirectory = "profile-images"
	ProfileImageName      = "profile.jpg"
	ImageExtension        = ".jpg"
	ContentTypeJPEG       = "image/jpeg"
)

// FeedPost mirrors a feed/{id} document.
type FeedPost struct {
	ID          string
	UserID      string
	ImageURL    string
	Caption     string
	Timestamp   time.Time
	StoragePath string
}

// Post is a feed post shaped for display.
type Post struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	ImageURL    string `json:"imageURL"`
	Caption     string `json:"caption"`
	Timestamp   string `json:"timestamp"`
	StoragePath string `json:"storagePath"`
}

// UploadFeedImageRequest holds the non-file fields of the multipart form;
// the image part is read separately.
type UploadFeedImageRequest struct {
	Caption string `form:"caption" validate:"max=2200"`
}

type UploadFeedImage struct {
	UserID  string
	Image   []byte
	Caption string
}

type UploadFeedImageResult struct {
	ImageURL    string `json:"imageURL"`
	PostID      string `json:"postId"`
	StoragePath string `json:"storagePath"`
}

type DeleteFeedImageRequest struct {
	PostID      string `param:"postID" validate:"required"`
	StoragePath string `json:"storagePath" validate:"required"`
}
