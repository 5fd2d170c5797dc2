package utils

import (
	"fmt"
	"time"
)

func SendBudgetAlertEmail(to, ownerName, groupName, alert, totalSpent, budgetAmount string) error {
	subject := fmt.Sprintf("Budget alert for '%s'", groupName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Budget Alert</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f6f8f7;
			margin: 0;
			padding: 0;
			color: #333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #f0ad4e;
		}
		.header {
			background-color: #f0ad4e;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
		}
		.message {
			font-size: 14px;
			line-height: 1.6;
			color: #444;
		}
		.alert-box {
			background: #fff9f0;
			border: 1px solid #f5d8a9;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
		}
		.alert-box h3 {
			margin: 0;
			color: #c77c11;
			font-size: 16px;
			font-weight: 700;
		}
		.alert-box p {
			margin: 6px 0 0;
			font-size: 13px;
			color: #555;
		}
		.footer {
			background: #f6f6f6;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777;
			border-top: 1px solid #e5e5e5;
		}
		.brand {
			color: #0a4d3c;
			font-weight: bold;
		}
	</style>
	</head>

	<body>
		<div class="container">
			<div class="header">
				<h1>Budget Alert</h1>
			</div>
			<div class="content">
				<p class="message">
					Hi %s,<br><br>
					Spending in your group <b>%s</b> has reached a budget threshold.
				</p>

				<div class="alert-box">
					<h3>%s</h3>
					<p>Spent so far: %s</p>
					<p>Budget: %s</p>
				</div>

				<p class="message">
					Log in to <b>SplitJourney</b> to review the group's expenses or
					adjust the budget.
				</p>
			</div>
			<div class="footer">
				&copy; %d <span class="brand">SplitJourney</span> — Share the trip, not the math.
			</div>
		</div>
	</body>
	</html>
	`, ownerName, groupName, alert, totalSpent, budgetAmount, time.Now().Year())

	return SendEmail(to, subject, body)
}
