package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/paperart-tui/internal/services"
	"github.com/j-veylop/paperart-tui/internal/services/generation"
)

const (
	// DefaultTickInterval drives the countdown display.
	DefaultTickInterval = time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// SuccessMessage is shown after a successful generation.
const SuccessMessage = "Successfully generated paper art transformation!"

// Messages shown for the generation failures a user can act on.
const (
	NoCreditsMessage    = "You've used all your daily credits. Come back tomorrow for more!"
	NoImageMessage      = "Please upload an image first"
	RenderFailedMessage = "Failed to generate styled image"
)

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadStateCmd reads everything the UI shows from the manager.
func loadStateCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return readState(mgr)
	}
}

func readState(mgr *services.Manager) InitialLoadMsg {
	entry, history, sess := mgr.InitialState()
	msg := InitialLoadMsg{
		Credits:     entry,
		Countdown:   mgr.Ledger().Countdown(),
		History:     history,
		Session:     sess,
		Preferences: mgr.Preferences(),
		Storage:     mgr.StorageInfo(),
		CreditCost:  mgr.Ledger().Cost(),
	}
	if landing, ok := mgr.Landing(); ok {
		msg.LandingIndex = landing.CurrentIndex
	}
	return msg
}

func storageInfoCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return StorageInfoMsg{Info: mgr.StorageInfo()}
	}
}

// generateCmd loads the image and runs the workflow.
func generateCmd(ctx context.Context, mgr *services.Manager, path string, state *AppState) tea.Cmd {
	prefs := state.GetPreferences()
	return func() tea.Msg {
		// Credits are checked before the file is touched so an exhausted
		// user sees the credits message first.
		if !mgr.Ledger().HasCredits() {
			return GenerationDoneMsg{Error: generation.ErrNoCredits}
		}

		var img generation.Image
		if path != "" {
			loaded, err := generation.LoadImage(path)
			if err != nil {
				return GenerationDoneMsg{Error: err}
			}
			img = loaded
		}
		res, err := mgr.Generate(ctx, img, prefs)
		return GenerationDoneMsg{Result: res, Error: err}
	}
}

func downloadCmd(mgr *services.Manager, url string, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		path, err := mgr.Download(ctx, url, index)
		return DownloadResultMsg{Path: path, Error: err}
	}
}

func shareCmd(mgr *services.Manager, url string) tea.Cmd {
	return func() tea.Msg {
		return ShareResultMsg{Error: mgr.Share(url)}
	}
}

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboardWrite(text); err != nil {
			return ClipboardResultMsg{Error: err}
		}
		return ClipboardResultMsg{Success: true}
	}
}

func signInCmd(mgr *services.Manager, email string) tea.Cmd {
	return func() tea.Msg {
		res, sess := mgr.SignIn(email)
		return SignInResultMsg{Result: res, Session: sess}
	}
}

func signOutCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.SignOut()
		return nil
	}
}

func exportCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		path, err := mgr.ExportUserData()
		return ExportResultMsg{Path: path, Error: err}
	}
}

func clearHistoryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ResetDoneMsg{What: "History cleared", OK: mgr.ClearHistory()}
	}
}

func clearUserDataCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.ClearUserData()
		return ResetDoneMsg{What: "User data cleared", OK: true}
	}
}

func factoryResetCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ResetDoneMsg{What: "Factory reset complete", OK: mgr.FactoryReset()}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// NotifySuccess lets tabs raise a success toast.
func NotifySuccess(message string) tea.Cmd { return notifySuccessCmd(message) }

// NotifyError lets tabs raise an error toast.
func NotifyError(message string) tea.Cmd { return notifyErrorCmd(message) }

// NotifyWarning lets tabs raise a warning toast.
func NotifyWarning(message string) tea.Cmd { return notifyWarningCmd(message) }

// NotifyInfo lets tabs raise an info toast.
func NotifyInfo(message string) tea.Cmd { return notifyInfoCmd(message) }

// Send wraps msg in a command.
func Send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// errorText renders err for a toast. Generation sentinels map to their
// user-facing sentences; anything else is prefixed with context.
func errorText(context string, err error) string {
	switch {
	case errors.Is(err, generation.ErrNoCredits):
		return NoCreditsMessage
	case errors.Is(err, generation.ErrNoImage):
		return NoImageMessage
	case errors.Is(err, generation.ErrRenderFailed):
		return RenderFailedMessage
	case context == "":
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", context, err)
}
