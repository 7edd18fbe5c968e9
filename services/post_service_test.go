package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func newPostService(m *memStore) *PostService {
	return NewPostService(m, zap.NewNop().Sugar())
}

func TestCreatePostLinksCreator(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	svc := newPostService(m)

	post, err := svc.Create(context.Background(), alice.ID, "first post")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID == 0 {
		t.Fatal("expected post to be assigned an id")
	}
	if post.Creator.ID != alice.ID {
		t.Fatalf("creator id = %d, want %d", post.Creator.ID, alice.ID)
	}
	if post.Creator.PostCount != 1 {
		t.Fatalf("echoed creator post count = %d, want 1", post.Creator.PostCount)
	}
	if got := m.users[alice.ID].PostCount; got != 1 {
		t.Fatalf("stored post count = %d, want 1", got)
	}
}

func TestCreatePostRejectsEmptyCaption(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	svc := newPostService(m)

	_, err := svc.Create(context.Background(), alice.ID, "   ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreatePostUnknownCreator(t *testing.T) {
	m := newMemStore()
	svc := newPostService(m)

	_, err := svc.Create(context.Background(), 42, "orphan")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreatePostRollsBackWhenCounterFails(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	m.failOn["AddToPostCount"] = fmt.Errorf("%w: counter update failed", ErrStorageUnavailable)
	svc := newPostService(m)

	_, err := svc.Create(context.Background(), alice.ID, "doomed")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
	if len(m.posts) != 0 {
		t.Fatalf("expected rollback to leave no posts, got %d", len(m.posts))
	}
	if got := m.users[alice.ID].PostCount; got != 0 {
		t.Fatalf("post count after rollback = %d, want 0", got)
	}
}

func TestUpdateCaptionOwnerOnly(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	bob := m.seedUser("bob", "bob@example.com")
	post := m.seedPost(alice.ID, "original")
	svc := newPostService(m)

	_, err := svc.UpdateCaption(context.Background(), bob.ID, post.ID, "hijacked")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if m.posts[post.ID].Caption != "original" {
		t.Fatalf("caption mutated to %q", m.posts[post.ID].Caption)
	}

	updated, err := svc.UpdateCaption(context.Background(), alice.ID, post.ID, "edited")
	if err != nil {
		t.Fatalf("UpdateCaption: %v", err)
	}
	if updated.Caption != "edited" || m.posts[post.ID].Caption != "edited" {
		t.Fatal("caption not updated by owner")
	}
}

func TestDeletePostPurgesDependents(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	bob := m.seedUser("bob", "bob@example.com")
	post := m.seedPost(alice.ID, "to delete")
	svc := newPostService(m)

	if _, err := svc.AddComment(context.Background(), bob.ID, post.ID, "nice"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := svc.Like(context.Background(), bob.ID, post.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if _, err := svc.Bookmark(context.Background(), bob.ID, post.ID); err != nil {
		t.Fatalf("Bookmark: %v", err)
	}

	if err := svc.Delete(context.Background(), alice.ID, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(m.posts) != 0 || len(m.comments) != 0 || len(m.likes) != 0 || len(m.bookmarks) != 0 {
		t.Fatal("expected post and all dependent rows removed")
	}
	if got := m.users[alice.ID].PostCount; got != 0 {
		t.Fatalf("creator post count = %d, want 0", got)
	}
}

func TestDeletePostMissingReportsNotFound(t *testing.T) {
	m := newMemStore()
	bob := m.seedUser("bob", "bob@example.com")
	svc := newPostService(m)

	// absence wins over authorization for a missing target
	err := svc.Delete(context.Background(), bob.ID, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeletePostUnauthorizedLeavesStateUnchanged(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	bob := m.seedUser("bob", "bob@example.com")
	post := m.seedPost(alice.ID, "keep me")
	svc := newPostService(m)

	err := svc.Delete(context.Background(), bob.ID, post.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if _, ok := m.posts[post.ID]; !ok {
		t.Fatal("post removed despite unauthorized delete")
	}
	if got := m.users[alice.ID].PostCount; got != 1 {
		t.Fatalf("creator post count = %d, want 1", got)
	}
}

func TestAddCommentNewestFirst(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	bob := m.seedUser("bob", "bob@example.com")
	post := m.seedPost(alice.ID, "discuss")
	svc := newPostService(m)

	if _, err := svc.AddComment(context.Background(), alice.ID, post.ID, "first"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	detail, err := svc.AddComment(context.Background(), bob.ID, post.ID, "second")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if len(detail.Comments) != 2 {
		t.Fatalf("comment count = %d, want 2", len(detail.Comments))
	}
	if detail.Comments[0].Text != "second" {
		t.Fatalf("newest comment at index 0 = %q, want %q", detail.Comments[0].Text, "second")
	}
	if detail.Comments[0].User.ID != bob.ID {
		t.Fatalf("comment author id = %d, want %d", detail.Comments[0].User.ID, bob.ID)
	}
	if detail.CommentCount != 2 {
		t.Fatalf("denormalized comment count = %d, want 2", detail.CommentCount)
	}
}

func TestAddCommentRollsBackWhenCounterFails(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	post := m.seedPost(alice.ID, "discuss")
	m.failOn["AddToCommentCount"] = fmt.Errorf("%w: counter update failed", ErrStorageUnavailable)
	svc := newPostService(m)

	_, err := svc.AddComment(context.Background(), alice.ID, post.ID, "lost")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
	if len(m.comments) != 0 {
		t.Fatal("expected rollback to leave no comments")
	}
	if m.posts[post.ID].CommentCount != 0 {
		t.Fatal("comment count moved despite rollback")
	}
}

func TestDeleteCommentAuthorOnlyAndRemovesReplies(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	bob := m.seedUser("bob", "bob@example.com")
	post := m.seedPost(alice.ID, "discuss")
	svc := newPostService(m)

	detail, err := svc.AddComment(context.Background(), bob.ID, post.ID, "hot take")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	commentID := detail.Comments[0].ID
	if _, err := svc.AddReply(context.Background(), alice.ID, commentID, "disagree"); err != nil {
		t.Fatalf("AddReply: %v", err)
	}

	if _, err := svc.DeleteComment(context.Background(), alice.ID, commentID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-author delete err = %v, want ErrUnauthorized", err)
	}

	deletedFrom, err := svc.DeleteComment(context.Background(), bob.ID, commentID)
	if err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if deletedFrom.CreatorID != alice.ID {
		t.Fatalf("owning post creator = %d, want %d", deletedFrom.CreatorID, alice.ID)
	}
	if len(m.comments) != 0 || len(m.replies) != 0 {
		t.Fatal("expected comment and its replies removed")
	}
	if m.posts[post.ID].CommentCount != 0 {
		t.Fatalf("comment count = %d, want 0", m.posts[post.ID].CommentCount)
	}
}

func TestAddReplyCarriesAuthor(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	post := m.seedPost(alice.ID, "discuss")
	svc := newPostService(m)

	detail, err := svc.AddComment(context.Background(), alice.ID, post.ID, "top level")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	reply, err := svc.AddReply(context.Background(), alice.ID, detail.Comments[0].ID, "follow up")
	if err != nil {
		t.Fatalf("AddReply: %v", err)
	}
	if reply.User.ID != alice.ID {
		t.Fatalf("reply author id = %d, want %d", reply.User.ID, alice.ID)
	}

	if _, err := svc.AddReply(context.Background(), alice.ID, 999, "nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reply to missing comment err = %v, want ErrNotFound", err)
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	post := m.seedPost(alice.ID, "likeable")
	svc := newPostService(m)

	for i := 0; i < 3; i++ {
		liked, err := svc.Like(context.Background(), alice.ID, post.ID)
		if err != nil {
			t.Fatalf("Like: %v", err)
		}
		// the echoed post names the creator so callers can refresh
		// per-creator views
		if liked.CreatorID != alice.ID {
			t.Fatalf("liked post creator = %d, want %d", liked.CreatorID, alice.ID)
		}
	}
	if m.posts[post.ID].LikeCount != 1 {
		t.Fatalf("like count = %d, want 1", m.posts[post.ID].LikeCount)
	}

	if _, err := svc.Unlike(context.Background(), alice.ID, post.ID); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	// removing an absent member is a no-op
	if _, err := svc.Unlike(context.Background(), alice.ID, post.ID); err != nil {
		t.Fatalf("repeated Unlike: %v", err)
	}
	if m.posts[post.ID].LikeCount != 0 {
		t.Fatalf("like count = %d, want 0", m.posts[post.ID].LikeCount)
	}
}

func TestLikeMissingPost(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	svc := newPostService(m)

	if _, err := svc.Like(context.Background(), alice.ID, 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBookmarkFlow(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	bob := m.seedUser("bob", "bob@example.com")
	first := m.seedPost(alice.ID, "keeper one")
	second := m.seedPost(alice.ID, "keeper two")
	svc := newPostService(m)

	if _, err := svc.Bookmark(context.Background(), bob.ID, first.ID); err != nil {
		t.Fatalf("Bookmark: %v", err)
	}
	if _, err := svc.Bookmark(context.Background(), bob.ID, second.ID); err != nil {
		t.Fatalf("Bookmark: %v", err)
	}
	if _, err := svc.Bookmark(context.Background(), bob.ID, second.ID); err != nil {
		t.Fatalf("repeated Bookmark: %v", err)
	}
	if m.posts[second.ID].BookmarkCount != 1 {
		t.Fatalf("bookmark count = %d, want 1", m.posts[second.ID].BookmarkCount)
	}

	saved, err := svc.BookmarkedBy(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("BookmarkedBy: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("bookmarked posts = %d, want 2", len(saved))
	}
	if saved[0].ID != second.ID {
		t.Fatalf("newest bookmark first: got post %d, want %d", saved[0].ID, second.ID)
	}

	if _, err := svc.Unbookmark(context.Background(), bob.ID, second.ID); err != nil {
		t.Fatalf("Unbookmark: %v", err)
	}
	saved, _ = svc.BookmarkedBy(context.Background(), bob.ID)
	if len(saved) != 1 || saved[0].ID != first.ID {
		t.Fatal("expected only the first post to stay bookmarked")
	}
}

func TestByIDBumpsViewCount(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	post := m.seedPost(alice.ID, "watched")
	svc := newPostService(m)

	got, err := svc.ByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("echoed view count = %d, want 1", got.ViewCount)
	}
	if m.posts[post.ID].ViewCount != 1 {
		t.Fatalf("stored view count = %d, want 1", m.posts[post.ID].ViewCount)
	}
}

func TestByIDToleratesViewBumpFailure(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	post := m.seedPost(alice.ID, "watched")
	m.failOn["IncrementViewCount"] = fmt.Errorf("%w: counter offline", ErrStorageUnavailable)
	svc := newPostService(m)

	got, err := svc.ByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ByID should not fail when only the view bump fails: %v", err)
	}
	if got.ViewCount != 0 {
		t.Fatalf("view count = %d, want 0", got.ViewCount)
	}
}

func TestFeedNewestFirst(t *testing.T) {
	m := newMemStore()
	alice := m.seedUser("alice", "alice@example.com")
	first := m.seedPost(alice.ID, "older")
	second := m.seedPost(alice.ID, "newer")
	svc := newPostService(m)

	feed, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != second.ID || feed[1].ID != first.ID {
		t.Fatal("feed not ordered newest first")
	}
	if feed[0].Creator.ID != alice.ID {
		t.Fatal("feed entries missing denormalized creator")
	}
}
