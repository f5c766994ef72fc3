package listpage

import (
	"context"
	"fmt"

	"clementus360/taskboard/types"
)

func deleteRequest(svc Service, task types.Task) Request {
	return Request{
		Title:       "Delete task",
		Message:     fmt.Sprintf("Are you sure you want to delete %q? This cannot be undone.", task.Title),
		ConfirmText: "Delete",
		CancelText:  "Cancel",
		Action: func(ctx context.Context) (Notice, error) {
			if err := svc.Delete(ctx, task.ID); err != nil {
				return Notice{}, fmt.Errorf("delete task %d: %w", task.ID, err)
			}
			return Notice{
				Title:   "Task deleted",
				Message: fmt.Sprintf("%q was deleted.", task.Title),
			}, nil
		},
		Failure: Notice{
			Title:   "Could not delete task",
			Message: "The task could not be deleted. Please try again.",
		},
	}
}

func toggleRequest(svc Service, task types.Task) Request {
	req := Request{
		CancelText: "Cancel",
		Action: func(ctx context.Context) (Notice, error) {
			updated, err := svc.ToggleCompletion(ctx, task.ID)
			if err != nil {
				return Notice{}, fmt.Errorf("toggle task %d: %w", task.ID, err)
			}
			// The service decides the new state; report what it says.
			if updated.IsCompleted {
				return Notice{Title: "Task completed", Message: fmt.Sprintf("%q is marked as complete.", updated.Title)}, nil
			}
			return Notice{Title: "Task reopened", Message: fmt.Sprintf("%q is open again.", updated.Title)}, nil
		},
		Failure: Notice{
			Title:   "Could not update task",
			Message: "The task status could not be changed. Please try again.",
		},
	}

	if task.IsCompleted {
		req.Title = "Reopen task"
		req.Message = fmt.Sprintf("Mark %q as not completed?", task.Title)
		req.ConfirmText = "Reopen"
	} else {
		req.Title = "Complete task"
		req.Message = fmt.Sprintf("Mark %q as complete?", task.Title)
		req.ConfirmText = "Complete"
	}
	return req
}

func saveSuccess(mode EditMode, task types.Task) Notice {
	if mode == ModeCreate {
		return Notice{Title: "Task created", Message: fmt.Sprintf("%q was created.", task.Title)}
	}
	return Notice{Title: "Task updated", Message: fmt.Sprintf("%q was updated.", task.Title)}
}

func saveFailure(mode EditMode) Notice {
	if mode == ModeCreate {
		return Notice{Title: "Could not create task", Message: "The task could not be created. Please try again."}
	}
	return Notice{Title: "Could not update task", Message: "The task could not be saved. Please try again."}
}
