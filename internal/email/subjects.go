package email

const (
	subjectWelcome            = "Welcome to FarmLink"
	subjectRequestAccepted    = "Your labor request was accepted"
	subjectAssignmentReminder = "Reminder: you have work scheduled tomorrow"
)
