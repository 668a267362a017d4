package fyneicon

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/svgwidget"
)

// ThemePrefix is prepended to the names of the theme icons.
const ThemePrefix = "theme/"

// ThemeIcons lists the icons of the fyne theme, in the order
// they are compared.
var ThemeIcons = []struct {
	Name     string
	Resource func() fyne.Resource
}{
	{"account", theme.AccountIcon},
	{"arrow-drop-down", theme.MenuDropDownIcon},
	{"arrow-drop-up", theme.MenuDropUpIcon},
	{"cancel", theme.CancelIcon},
	{"check-button", theme.CheckButtonIcon},
	{"check-button-checked", theme.CheckButtonCheckedIcon},
	{"color-palette", theme.ColorPaletteIcon},
	{"computer", theme.ComputerIcon},
	{"confirm", theme.ConfirmIcon},
	{"content-add", theme.ContentAddIcon},
	{"content-clear", theme.ContentClearIcon},
	{"content-copy", theme.ContentCopyIcon},
	{"content-cut", theme.ContentCutIcon},
	{"content-paste", theme.ContentPasteIcon},
	{"content-redo", theme.ContentRedoIcon},
	{"content-remove", theme.ContentRemoveIcon},
	{"content-undo", theme.ContentUndoIcon},
	{"delete", theme.DeleteIcon},
	{"document", theme.DocumentIcon},
	{"document-create", theme.DocumentCreateIcon},
	{"document-print", theme.DocumentPrintIcon},
	{"document-save", theme.DocumentSaveIcon},
	{"download", theme.DownloadIcon},
	{"error", theme.ErrorIcon},
	{"file", theme.FileIcon},
	{"folder", theme.FolderIcon},
	{"folder-new", theme.FolderNewIcon},
	{"folder-open", theme.FolderOpenIcon},
	{"grid", theme.GridIcon},
	{"help", theme.HelpIcon},
	{"history", theme.HistoryIcon},
	{"home", theme.HomeIcon},
	{"info", theme.InfoIcon},
	{"list", theme.ListIcon},
	{"login", theme.LoginIcon},
	{"logout", theme.LogoutIcon},
	{"mail-attachment", theme.MailAttachmentIcon},
	{"mail-compose", theme.MailComposeIcon},
	{"mail-send", theme.MailSendIcon},
	{"media-pause", theme.MediaPauseIcon},
	{"media-play", theme.MediaPlayIcon},
	{"media-stop", theme.MediaStopIcon},
	{"menu", theme.MenuIcon},
	{"move-down", theme.MoveDownIcon},
	{"move-up", theme.MoveUpIcon},
	{"navigate-back", theme.NavigateBackIcon},
	{"navigate-next", theme.NavigateNextIcon},
	{"question", theme.QuestionIcon},
	{"radio-button", theme.RadioButtonIcon},
	{"search", theme.SearchIcon},
	{"settings", theme.SettingsIcon},
	{"storage", theme.StorageIcon},
	{"upload", theme.UploadIcon},
	{"view-full-screen", theme.ViewFullScreenIcon},
	{"view-refresh", theme.ViewRefreshIcon},
	{"visibility", theme.VisibilityIcon},
	{"visibility-off", theme.VisibilityOffIcon},
	{"volume-mute", theme.VolumeMuteIcon},
	{"volume-up", theme.VolumeUpIcon},
	{"warning", theme.WarningIcon},
	{"zoom-in", theme.ZoomInIcon},
	{"zoom-out", theme.ZoomOutIcon},
}

// Candidates returns the theme icons as widgets rendered by `host`.
// NewApp must have been called.
func Candidates(host *svgwidget.Host) []batch.Candidate {
	out := make([]batch.Candidate, len(ThemeIcons))
	for i, ic := range ThemeIcons {
		out[i] = batch.Candidate{
			Name: ThemePrefix + ic.Name,
			Source: svgwidget.Icon{
				Widget: Widget{Object: widget.NewIcon(ic.Resource())},
				Host:   host,
			},
		}
	}
	return out
}
