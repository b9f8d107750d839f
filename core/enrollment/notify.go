package enrollment

import (
	"context"
	"net/mail"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/user"
)

// Email template names, see fs/templates/email.
const (
	TemplateEnrolled        = "enrolled"
	TemplateCourseCompleted = "course_completed"
)

type notificationData struct {
	StudentName string
	CourseTitle string
	CourseID    string
	ModuleCount int
	Duration    string
}

// student looks up the recipient of a notification. A failed lookup skips the email.
func (svc *Service) student(ctx context.Context, studentID string) (user.User, bool) {
	usr, err := svc.users.GetUser(ctx, user.GetFilter{ID: studentID})
	if err != nil {
		if !core.IsNotFound(err) {
			svc.logger.Error("enrollment: getting student for notification", err)
		}
		return user.User{}, false
	}
	return usr, true
}

func (svc *Service) notifyEnrolled(ctx context.Context, studentID string, crs course.Course) {
	if svc.mailSvc == nil {
		return
	}
	usr, ok := svc.student(ctx, studentID)
	if !ok {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "You are enrolled in " + crs.Title,
		TemplateName: TemplateEnrolled,
		TemplateData: notificationData{
			StudentName: usr.Name,
			CourseTitle: crs.Title,
			CourseID:    crs.ID,
			ModuleCount: len(crs.Modules),
			Duration:    course.FormatDuration(crs.TotalDuration()),
		},
	})
}

func (svc *Service) notifyCompleted(ctx context.Context, e Enrollment) {
	if svc.mailSvc == nil {
		return
	}
	usr, ok := svc.student(ctx, e.StudentID)
	if !ok {
		return
	}
	data := notificationData{StudentName: usr.Name, CourseID: e.CourseID, ModuleCount: len(e.Progress)}
	if crs, err := svc.courses.GetCourse(ctx, e.CourseID); err == nil {
		data.CourseTitle = crs.Title
		data.Duration = course.FormatDuration(crs.TotalDuration())
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Course completed",
		TemplateName: TemplateCourseCompleted,
		TemplateData: data,
	})
}
