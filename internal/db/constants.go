package db

// sqlTimeLayout is the layout timestamps are written in. It matches what
// SQLite's date and time functions accept.
const sqlTimeLayout = "2006-01-02 15:04:05"
