// Copyright 2025 The ledger-sheets Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package ledgersheets maintains a delivery ledger stored as a Google Sheets worksheet.

Each ledger row records the date of an activity, the delivery type, a description of the work done, a
summary derived from the date and description and the name of the person who filled in the entry. Row 1
is always the ledger header.

ledger-sheets can be used from the command line or run as a small web form, and supports the following
commands:

  - authorise, to authorise access to the ledger spreadsheet with OAuth2 client credentials
  - ensure-header, to restore the ledger header and remove a duplicated header row
  - submit, to append an entry to the ledger
  - get, to download the ledger entries as a TSV file
  - put, to replace the ledger entries with an edited TSV file
  - export, to export the ledger entries to an Excel workbook
  - serve, to serve the entry form, the editable ledger table and the Excel export over HTTP
*/
package ledgersheets
