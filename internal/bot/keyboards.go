package bot

// Button labels. Reply keyboards send the label back as plain text.
const (
	BtnSystem    = "🖥️ System"
	BtnMedia     = "🔊 Media"
	BtnClipboard = "📋 Clipboard"
	BtnFiles     = "📁 Files"
	BtnPlayer    = "🎵 Player"
	BtnNetwork   = "🌐 Network"
	BtnBattery   = "🔋 Battery"
	BtnProcesses = "💻 Processes"
	BtnStatus    = "ℹ️ Status"
	BtnHelp      = "❓ Help"
	BtnMainMenu  = "« Main Menu"

	BtnLock       = "🔒 Lock Screen"
	BtnSleep      = "😴 Sleep"
	BtnScreenshot = "📸 Screenshot"
	BtnShutdown   = "⚠️ Shutdown"

	BtnMute      = "🔇 Mute"
	BtnVolume25  = "🔉 25%"
	BtnVolume50  = "🔉 50%"
	BtnVolume75  = "🔊 75%"
	BtnVolume100 = "🔊 100%"

	BtnPaste    = "📋 Get Clipboard"
	BtnCopyText = "✍️ Copy Text"

	BtnUpload   = "📤 Upload File"
	BtnDownload = "📥 Download File"

	BtnPlayPause = "⏯️ Play/Pause"
	BtnPrevious  = "⏮️ Previous"
	BtnNext      = "⏭️ Next"
	BtnStop      = "⏹️ Stop"

	BtnConfirmShutdown = "✅ Confirm Shutdown"
	BtnCancel          = "❌ Cancel"
)

func mainKeyboard() Keyboard {
	return Keyboard{
		{BtnSystem, BtnMedia},
		{BtnClipboard, BtnFiles},
		{BtnPlayer, BtnNetwork},
		{BtnBattery, BtnProcesses},
		{BtnStatus, BtnHelp},
	}
}

func systemKeyboard() Keyboard {
	return Keyboard{
		{BtnLock, BtnSleep},
		{BtnScreenshot, BtnShutdown},
		{BtnMainMenu},
	}
}

func mediaKeyboard() Keyboard {
	return Keyboard{
		{BtnMute, BtnVolume25},
		{BtnVolume50, BtnVolume75},
		{BtnVolume100, BtnMainMenu},
	}
}

func clipboardKeyboard() Keyboard {
	return Keyboard{
		{BtnPaste, BtnCopyText},
		{BtnMainMenu},
	}
}

func filesKeyboard() Keyboard {
	return Keyboard{
		{BtnUpload, BtnDownload},
		{BtnMainMenu},
	}
}

func playerKeyboard() Keyboard {
	return Keyboard{
		{BtnPlayPause},
		{BtnPrevious, BtnNext},
		{BtnStop, BtnMainMenu},
	}
}

func shutdownKeyboard() Keyboard {
	return Keyboard{
		{BtnConfirmShutdown, BtnCancel},
	}
}
