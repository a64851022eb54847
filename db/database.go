package db

import (
	"context"
	"time"

	"github.com/civicconnect/civicconnect-be/model"
)

// Database is the full store. Route groups and controllers depend on the
// narrower interfaces below.
type Database interface {
	UserDatabase
	ConnectionDatabase
	PostDatabase
	CommentDatabase
	NotificationDatabase
	SchemeDatabase
	JobDatabase
	EventDatabase
	MessageDatabase
	ReportDatabase
	AnnouncementDatabase
	SearchDatabase
	AdminDatabase
	Ping(ctx context.Context) error
	Close() error
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// UpdateUser carries the columns to change; nil fields are left untouched.
type UpdateUser struct {
	Username   *string
	Name       *string
	Headline   *string
	Bio        *string
	Location   *string
	Avatar     *string
	CoverImage *string
	Role       *model.Role
	IsBanned   *bool
}

func (uu *UpdateUser) IsEmpty() bool {
	return uu.Username == nil && uu.Name == nil && uu.Headline == nil && uu.Bio == nil &&
		uu.Location == nil && uu.Avatar == nil && uu.CoverImage == nil && uu.Role == nil && uu.IsBanned == nil
}

type UserDatabase interface {
	CreateUser(ctx context.Context, user *model.User) (userId int64, err error)
	// GetUser returns nil, nil when the user does not exist.
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUsersByUsernames matches case-insensitively and skips banned users.
	GetUsersByUsernames(ctx context.Context, usernames []string) ([]*model.User, error)
	UpdateUser(ctx context.Context, id int64, update *UpdateUser) error
	GetProfile(ctx context.Context, id int64, viewerId int64) (*model.Profile, error)
	GetSuggestions(ctx context.Context, userId int64, limit int) ([]*model.UserSummary, error)
}

type ConnectionDatabase interface {
	// Connect writes both directions in one transaction.
	Connect(ctx context.Context, userId int64, otherId int64) error
	// Disconnect removes both directions and reports whether anything existed.
	Disconnect(ctx context.Context, userId int64, otherId int64) (bool, error)
	IsConnected(ctx context.Context, userId int64, otherId int64) (bool, error)
	GetConnections(ctx context.Context, userId int64, page Page) ([]*model.ConnectedUser, int64, error)
	GetConnectionIds(ctx context.Context, userId int64) ([]int64, error)
}

type CreatePost struct {
	AuthorId int64
	Content  string
	ImageUrl string
}

type PostQueryOpts struct {
	// ReactionsOf fills Post.UserReaction for this user when non-zero.
	ReactionsOf int64
}

// PostsListQuery pages newest first, either by keyset (From/LastId) or offset.
type PostsListQuery struct {
	*PostQueryOpts
	From      *time.Time
	LastId    int64
	AuthorIds []int64
	Limit     int
	Offset    int
}

type PostDatabase interface {
	CreatePost(ctx context.Context, req *CreatePost) (postId int64, err error)
	GetPostById(ctx context.Context, id int64, opts *PostQueryOpts) (*model.Post, error)
	GetPosts(ctx context.Context, query *PostsListQuery) ([]*model.Post, error)
	CountPostsByAuthor(ctx context.Context, authorId int64) (int64, error)
	UpdatePost(ctx context.Context, id int64, content string, imageUrl string) error
	DeletePost(ctx context.Context, id int64) error
	// React sets the user's single reaction, reporting whether it is new.
	React(ctx context.Context, userId int64, postId int64, reaction model.ReactionType) (created bool, err error)
	Unreact(ctx context.Context, userId int64, postId int64) error
}

type CreateComment struct {
	PostId    int64
	AuthorId  int64
	ParentId  *int64
	ReplyToId *int64
	Depth     int
	Content   string
}

type CommentDatabase interface {
	CreateComment(ctx context.Context, req *CreateComment) (commentId int64, err error)
	GetCommentById(ctx context.Context, id int64) (*model.Comment, error)
	GetComments(ctx context.Context, postId int64) ([]*model.Comment, error)
	// DeleteComment removes the comment with its replies and returns how many rows went.
	DeleteComment(ctx context.Context, id int64) (int64, error)
}

type NotificationDatabase interface {
	CreateNotifications(ctx context.Context, notifications []*model.Notification) error
	GetNotifications(ctx context.Context, userId int64, unreadOnly bool, page Page) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, userId int64) (int64, error)
	MarkRead(ctx context.Context, userId int64, id int64) error
	MarkAllRead(ctx context.Context, userId int64) (int64, error)
	DeleteNotification(ctx context.Context, userId int64, id int64) error
	// FanOutAnnouncement notifies every non-banned user except the author.
	FanOutAnnouncement(ctx context.Context, announcement *model.Announcement) (int64, error)
}

type ListingQuery struct {
	Q        string
	Category string
	Page     Page
}

type SchemeDatabase interface {
	CreateScheme(ctx context.Context, scheme *model.Scheme) (int64, error)
	GetScheme(ctx context.Context, id int64) (*model.Scheme, error)
	ListSchemes(ctx context.Context, query *ListingQuery) ([]*model.Scheme, int64, error)
	UpdateScheme(ctx context.Context, scheme *model.Scheme) error
	DeleteScheme(ctx context.Context, id int64) error
}

type JobsQuery struct {
	Q          string
	JobType    model.JobType
	Location   string
	ActiveOnly bool
	Page       Page
}

type JobDatabase interface {
	CreateJob(ctx context.Context, job *model.Job) (int64, error)
	GetJob(ctx context.Context, id int64) (*model.Job, error)
	ListJobs(ctx context.Context, query *JobsQuery) ([]*model.Job, int64, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, id int64) error
	ApplyToJob(ctx context.Context, application *model.JobApplication) error
	GetApplications(ctx context.Context, jobId int64, page Page) ([]*model.JobApplication, int64, error)
}

type EventsQuery struct {
	Q            string
	UpcomingOnly bool
	Now          time.Time
	ViewerId     int64
	Page         Page
}

type EventDatabase interface {
	CreateEvent(ctx context.Context, event *model.Event) (int64, error)
	GetEvent(ctx context.Context, id int64, viewerId int64) (*model.Event, error)
	ListEvents(ctx context.Context, query *EventsQuery) ([]*model.Event, int64, error)
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	// Attend adds the attendee and bumps attendee_count in one transaction.
	Attend(ctx context.Context, eventId int64, userId int64) error
	Unattend(ctx context.Context, eventId int64, userId int64) (bool, error)
}

type MessageDatabase interface {
	GetOrCreateConversation(ctx context.Context, userId int64, otherId int64) (*model.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*model.Conversation, error)
	GetConversations(ctx context.Context, userId int64) ([]*model.ConversationSummary, error)
	GetMessages(ctx context.Context, conversationId int64, page Page) ([]*model.Message, int64, error)
	// SendMessage inserts the message and touches the conversation in one transaction.
	SendMessage(ctx context.Context, message *model.Message) (int64, error)
	MarkConversationRead(ctx context.Context, conversationId int64, readerId int64) (int64, error)
}

type ReportDatabase interface {
	CreateReport(ctx context.Context, report *model.Report) (int64, error)
	GetReport(ctx context.Context, id int64) (*model.Report, error)
	GetReports(ctx context.Context, status model.ReportStatus, page Page) ([]*model.Report, int64, error)
	UpdateReportStatus(ctx context.Context, id int64, status model.ReportStatus, resolverId int64) error
	// GetTargetOwner returns the owning user of reportable content; found is
	// false when the target does not exist.
	GetTargetOwner(ctx context.Context, targetType model.TargetType, targetId int64) (ownerId int64, found bool, err error)
}

type AnnouncementDatabase interface {
	CreateAnnouncement(ctx context.Context, announcement *model.Announcement) (int64, error)
	GetAnnouncement(ctx context.Context, id int64) (*model.Announcement, error)
	GetActiveAnnouncements(ctx context.Context, now time.Time, urgentOnly bool) ([]*model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, announcement *model.Announcement) error
	DeleteAnnouncement(ctx context.Context, id int64) error
}

type SearchDatabase interface {
	SearchUsers(ctx context.Context, q string, limit int) ([]*model.UserSummary, error)
	SearchPosts(ctx context.Context, q string, limit int, viewerId int64) ([]*model.Post, error)
}

type AdminDatabase interface {
	GetStats(ctx context.Context) (*model.Stats, error)
	ListUsers(ctx context.Context, q string, page Page) ([]*model.User, int64, error)
}
