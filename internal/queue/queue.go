package queue

import (
	"github.com/google/uuid"
	"github.com/maheshrc27/selfpost/internal/service"
)

type Queue struct {
	ps service.PostService
}

func NewQueue(ps service.PostService) *Queue {
	return &Queue{ps: ps}
}

const TaskTypePublishPost = "post:publish"

type PublishPostPayload struct {
	PostID uuid.UUID `json:"post_id"`
}
