// Package console provides the text menu front end of the smart office.
//
// The dispatcher shows one of two menus depending on the session state:
//   - Login menu: 1 Login, 2 Exit. Exit is the only way, besides end of input,
//     to leave the loop.
//   - Main menu: 1 View Device Status, 2 Control Device, 3 View Room
//     Availability, 4 Book a Room, 5 Check-In to Office, 6 Check-Out from
//     Office, 7 Generate Attendance Report, 8 Admin Panel, 9 Logout,
//     10 Adjust Device, 11 Check-In to Booking, 12 Release Unused Bookings.
//
// Every choice resolves to exactly one OfficeService operation. Results go to
// the output writer; room booking failures go to the error writer prefixed with
// "Booking Failed: ". A non-numeric choice is reported and treated as an
// invalid menu entry.
package console
