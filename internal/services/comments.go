package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"recipehub/internal/logging"
	"recipehub/internal/models"
	"recipehub/internal/store"
	"recipehub/internal/utils"
)

const maxCommentLength = 2000

// CommentView is a comment with its like state and, for roots, replies.
type CommentView struct {
	models.Comment
	LikesCount int           `json:"likes_count"`
	IsLiked    bool          `json:"is_liked"`
	Replies    []CommentView `json:"replies,omitempty"`
}

func newCommentView(c *models.Comment, viewer uint) CommentView {
	return CommentView{
		Comment:    *c,
		LikesCount: c.LikesCount(),
		IsLiked:    viewer != 0 && c.IsLikedBy(viewer),
	}
}

type CommentService struct {
	store  store.Store
	notify Emitter
	now    func() time.Time
}

func NewCommentService(st store.Store, notify Emitter) *CommentService {
	return &CommentService{store: st, notify: notify, now: time.Now}
}

func cleanContent(content string) (string, error) {
	content = utils.SanitizeText(content)
	if content == "" {
		return "", invalidf("comment must not be empty")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return "", invalidf("comment must be at most %d characters", maxCommentLength)
	}
	return content, nil
}

// Add posts a comment on a recipe, or a reply when parentID is set. Replies
// attach to root comments only.
func (s *CommentService) Add(ctx context.Context, recipeID, authorID uint, content string, parentID *uint) (*CommentView, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	recipe, err := visibleRecipe(ctx, s.store, recipeID, authorID)
	if err != nil {
		return nil, err
	}

	placement := models.Root()
	if parentID != nil {
		parent, err := s.store.GetComment(ctx, *parentID)
		if err != nil {
			return nil, storeErr(err, "parent comment")
		}
		if parent.RecipeID != recipeID {
			return nil, invalidf("parent comment belongs to another recipe")
		}
		if placement, err = models.ReplyTo(parent); err != nil {
			return nil, invalidf("%v", err)
		}
	}

	c := &models.Comment{
		RecipeID:  recipeID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}
	placement.Apply(c)
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.fanOut(ctx, recipe, c, placement)
	v := newCommentView(c, authorID)
	return &v, nil
}

// fanOut notifies the recipe author and, for a reply, the parent's author.
// Someone who is both gets only the reply.
func (s *CommentService) fanOut(ctx context.Context, recipe *models.Recipe, c *models.Comment, p models.Placement) {
	base := NotificationRequest{
		SenderID:  c.AuthorID,
		RecipeID:  &recipe.ID,
		CommentID: &c.ID,
		Subject:   recipe.Title,
	}

	if p.IsReply() {
		reply := base
		reply.RecipientID = p.Parent().AuthorID
		reply.Type = models.NotificationTypeReply
		s.notify.Emit(ctx, reply)
		if p.Parent().AuthorID == recipe.AuthorID {
			return
		}
	}

	comment := base
	comment.RecipientID = recipe.AuthorID
	comment.Type = models.NotificationTypeComment
	s.notify.Emit(ctx, comment)
}

func (s *CommentService) Update(ctx context.Context, commentID, actor uint, content string) (*CommentView, error) {
	content, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	c, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "comment")
	}
	if c.AuthorID != actor {
		return nil, forbiddenf("only the author can edit comment %d", commentID)
	}

	if c.Edit(content, s.now()) {
		if err := s.store.SaveComment(ctx, c); err != nil {
			return nil, storeErr(err, "comment")
		}
	}
	v := newCommentView(c, actor)
	return &v, nil
}

// Delete removes a comment, and its replies when it is a root. The comment
// author and the recipe author may delete.
func (s *CommentService) Delete(ctx context.Context, commentID, actor uint) error {
	c, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return storeErr(err, "comment")
	}
	if c.AuthorID != actor {
		r, err := s.store.GetRecipe(ctx, c.RecipeID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return storeErr(err, "recipe")
		}
		if r == nil || r.AuthorID != actor {
			return forbiddenf("not allowed to delete comment %d", commentID)
		}
	}

	removed, err := s.store.DeleteComment(ctx, commentID)
	if err != nil {
		return storeErr(err, "comment")
	}
	if err := s.store.DeleteForComments(ctx, removed); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Uints("comment_ids", removed).Msg("comment notifications not removed")
	}
	return nil
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID uint) (*LikeResult, error) {
	c, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "comment")
	}
	recipe, err := visibleRecipe(ctx, s.store, c.RecipeID, userID)
	if err != nil {
		return nil, err
	}

	t, err := s.store.ToggleCommentLike(ctx, commentID, userID)
	if err != nil {
		return nil, storeErr(err, "comment")
	}
	if t.Liked {
		s.notify.Emit(ctx, NotificationRequest{
			RecipientID: c.AuthorID,
			SenderID:    userID,
			Type:        models.NotificationTypeLike,
			RecipeID:    &recipe.ID,
			CommentID:   &c.ID,
			Subject:     recipe.Title,
		})
	}
	return &LikeResult{IsLiked: t.Liked, LikesCount: t.Count}, nil
}

// List pages a recipe's root comments, newest first, each carrying its
// replies oldest first.
func (s *CommentService) List(ctx context.Context, recipeID, viewer uint, page Page) ([]CommentView, Pagination, error) {
	if _, err := visibleRecipe(ctx, s.store, recipeID, viewer); err != nil {
		return nil, Pagination{}, err
	}
	page = page.Normalize()

	roots, total, err := s.store.ListRootComments(ctx, recipeID, page.Offset(), page.Limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list comments: %w", err)
	}
	ids := make([]uint, 0, len(roots))
	for _, r := range roots {
		ids = append(ids, r.ID)
	}
	replies, err := s.store.ListReplies(ctx, ids)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list replies: %w", err)
	}

	byParent := make(map[uint][]CommentView, len(roots))
	for i := range replies {
		pid := *replies[i].ParentID
		byParent[pid] = append(byParent[pid], newCommentView(&replies[i], viewer))
	}
	out := make([]CommentView, 0, len(roots))
	for i := range roots {
		v := newCommentView(&roots[i], viewer)
		v.Replies = byParent[roots[i].ID]
		out = append(out, v)
	}
	return out, NewPagination(page, total), nil
}
