package commands

const (
	_etc = "/usr/local/etc/ledger-sheets"
	_var = "/usr/local/var/ledger-sheets"

	_browser = "xdg-open"

	DEFAULT_CONFIG      = _etc + "/ledger-sheets.yaml"
	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
