package application

var profileOrder = []ProfileType{
	ProfileStudent,
	ProfileDeveloper,
	ProfileSupport,
	ProfileResearcher,
	ProfileCustom,
}

var builtinProfiles = map[ProfileType]UserProfile{
	ProfileStudent: {
		ID:   "profile-student",
		Name: "Student",
		Type: ProfileStudent,
		Preferences: RecordingPreferences{
			TrackBrowserTabs:   true,
			TrackMeetings:      true,
			TrackDocuments:     true,
			TrackMedia:         true,
			CaptureScreenshots: true,
			CaptureInterval:    30,
		},
		OutputTemplates: []string{"research-notes", "quick-summary"},
	},
	ProfileDeveloper: {
		ID:   "profile-developer",
		Name: "Developer",
		Type: ProfileDeveloper,
		Preferences: RecordingPreferences{
			TrackBrowserTabs:  true,
			TrackApplications: true,
			TrackTerminal:     true,
			TrackMessaging:    true,
			TrackDocuments:    true,
			CaptureInterval:   60,
		},
		OutputTemplates: []string{"detailed-report", "action-items", "quick-summary"},
	},
	ProfileSupport: {
		ID:   "profile-support",
		Name: "Support",
		Type: ProfileSupport,
		Preferences: RecordingPreferences{
			TrackBrowserTabs:   true,
			TrackApplications:  true,
			TrackMessaging:     true,
			TrackMeetings:      true,
			TrackDocuments:     true,
			CaptureScreenshots: true,
			CaptureInterval:    30,
		},
		OutputTemplates: []string{"action-items", "detailed-report"},
	},
	ProfileResearcher: {
		ID:   "profile-researcher",
		Name: "Researcher",
		Type: ProfileResearcher,
		Preferences: RecordingPreferences{
			TrackBrowserTabs:   true,
			TrackDocuments:     true,
			TrackMedia:         true,
			TrackMeetings:      true,
			CaptureScreenshots: true,
			CaptureInterval:    120,
		},
		OutputTemplates: []string{"research-notes", "detailed-report"},
	},
	ProfileCustom: {
		ID:              "profile-custom",
		Name:            "Custom",
		Type:            ProfileCustom,
		Preferences:     DefaultCustomPreferences(),
		OutputTemplates: []string{"quick-summary", "detailed-report", "action-items", "research-notes"},
	},
}

// DefaultCustomPreferences returns the preference set a fresh custom profile starts with.
func DefaultCustomPreferences() RecordingPreferences {
	return RecordingPreferences{
		TrackBrowserTabs:  true,
		TrackApplications: true,
		TrackTerminal:     true,
		TrackMessaging:    true,
		TrackMeetings:     true,
		TrackDocuments:    true,
		TrackMedia:        true,
		CaptureInterval:   60,
	}
}

// BuiltinProfile returns the constant profile for t. For ProfileCustom it
// carries the default custom preferences.
func BuiltinProfile(t ProfileType) (UserProfile, bool) {
	profile, ok := builtinProfiles[t]
	if !ok {
		return UserProfile{}, false
	}
	return cloneProfile(profile), true
}

func cloneProfile(p UserProfile) UserProfile {
	p.OutputTemplates = append([]string(nil), p.OutputTemplates...)
	return p
}
