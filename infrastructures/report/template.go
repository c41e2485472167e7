package report

import (
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

var digestTemplate = template.Must(template.New("digest").Funcs(sprig.FuncMap()).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Daily Cybersecurity Digest</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa; }
        .container { background-color: white; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); overflow: hidden; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; font-weight: 300; }
        .content { padding: 30px; }
        .greeting { font-size: 18px; margin-bottom: 20px; color: #2c3e50; }
        .intro { font-size: 16px; margin-bottom: 30px; color: #555; background-color: #f8f9fa; padding: 15px; border-left: 4px solid #667eea; border-radius: 4px; }
        .stats { background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin-bottom: 30px; }
        .stat-item { display: inline-block; margin-right: 20px; margin-bottom: 10px; }
        .stat-number { font-size: 24px; font-weight: bold; color: #667eea; }
        .stat-label { font-size: 14px; color: #666; display: block; }
        .hot-articles h3 { color: #e74c3c; font-size: 20px; margin-bottom: 20px; border-bottom: 2px solid #e74c3c; padding-bottom: 10px; }
        .article { margin-bottom: 25px; padding: 15px; border: 1px solid #e1e8ed; border-radius: 8px; background-color: #fafbfc; }
        .article-title { font-size: 16px; font-weight: bold; margin-bottom: 8px; }
        .article-title a { color: #2c3e50; text-decoration: none; }
        .article-summary { font-size: 14px; color: #555; margin-bottom: 8px; }
        .article-meta { font-size: 12px; color: #888; }
        .article-meta .source { font-weight: bold; color: #667eea; }
        .article-meta .severity { background-color: #e74c3c; color: white; padding: 2px 8px; border-radius: 12px; font-size: 11px; margin-left: 10px; }
        .article-meta .severity.medium { background-color: #f39c12; }
        .article-meta .severity.low { background-color: #27ae60; }
        .footer { background-color: #2c3e50; color: white; padding: 20px; text-align: center; font-size: 14px; }
        .timestamp { font-size: 12px; color: #95a5a6; margin-top: 15px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🛡️ Daily Cybersecurity Digest</h1>
        </div>
        <div class="content">
            <div class="greeting">{{ .Greeting }}, here are today's top cybersecurity updates.</div>
            <div class="intro">{{ .Intro }}</div>
            <div class="stats">
                <h3>📊 Today's Security Overview</h3>
                <div class="stat-item"><span class="stat-number">{{ .Total }}</span><span class="stat-label">Total Updates</span></div>
                <div class="stat-item"><span class="stat-number" style="color: #e74c3c;">{{ .High }}</span><span class="stat-label">Critical Alerts</span></div>
                <div class="stat-item"><span class="stat-number" style="color: #f39c12;">{{ .Medium }}</span><span class="stat-label">Medium Priority</span></div>
                <div class="stat-item"><span class="stat-number" style="color: #27ae60;">{{ .Low }}</span><span class="stat-label">Low Priority</span></div>
            </div>
            <div class="hot-articles">
                <h3>🔥 Hot Articles Today</h3>
{{- range .Articles }}
                <div class="article">
                    <div class="article-title"><a href="{{ .URL }}" target="_blank">{{ .Title }}</a></div>
                    <div class="article-summary">{{ .Summary }}</div>
                    <div class="article-meta">
                        <span class="source">{{ .Source }}</span>
                        <span class="severity {{ .Severity | lower }}">{{ .Severity }}</span>
                    </div>
                </div>
{{- end }}
            </div>
        </div>
        <div class="footer">
            <p><strong>Stay safe and informed.</strong></p>
            <p>— Sent by Cyber News Agent 🤖</p>
            <div class="timestamp">Generated on {{ .GeneratedAt }}</div>
        </div>
    </div>
</body>
</html>
`))

var welcomeTemplate = template.Must(template.New("welcome").Funcs(sprig.FuncMap()).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to Cyber News Agent</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f4f4f4; }
        .container { background: white; border-radius: 10px; padding: 30px; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1); }
        .header { text-align: center; margin-bottom: 30px; padding-bottom: 20px; border-bottom: 3px solid #00ff88; }
        .header h1 { color: #00ff88; font-size: 28px; margin: 0; }
        .welcome-message { font-size: 18px; margin-bottom: 25px; text-align: center; color: #2c3e50; }
        .features { background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .features h3 { color: #00ff88; margin-top: 0; }
        .feature-item { margin: 10px 0; padding-left: 20px; }
        .cta-button { display: inline-block; background: linear-gradient(135deg, #00ff88, #00cc6a); color: white; padding: 15px 30px; text-decoration: none; border-radius: 25px; font-weight: bold; margin: 20px 0; }
        .footer { text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 14px; }
        .highlight { background: linear-gradient(120deg, #00ff88 0%, #00cc6a 100%); color: white; padding: 2px 8px; border-radius: 4px; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🛡️ Cyber News Agent 🤖</h1>
        </div>
        <div class="welcome-message">
            <strong>{{ .Greeting }}, Cybersecurity Warrior!</strong><br>
            Welcome to the most exciting cybersecurity community! 🎉
        </div>
        <p>You've just joined an elite group of security professionals, researchers, and enthusiasts who stay ahead of the curve. <span class="highlight">Let's dive into the cyber world together!</span></p>
        <div class="features">
            <h3>🚀 What You'll Get:</h3>
            <div class="feature-item">🛡️ Daily cybersecurity digest at <strong>{{ .NotificationTime }}</strong></div>
            <div class="feature-item">🛡️ Top 5 hottest articles with AI-powered analysis</div>
            <div class="feature-item">🛡️ Professional HTML emails with clickable links</div>
            <div class="feature-item">🛡️ Severity classifications (High/Medium/Low)</div>
            <div class="feature-item">🛡️ Real-time threat intelligence and trends</div>
            <div class="feature-item">🛡️ Access to our web dashboard anytime</div>
        </div>
        <div style="text-align: center;">
            <a href="{{ .AppURL }}" class="cta-button">🌐 Explore Dashboard</a>
        </div>
        <div style="background: #e8f5e8; padding: 15px; border-radius: 8px; margin: 20px 0;">
            <strong>🎯 Your First Email:</strong><br>
            You'll receive your first cybersecurity digest tomorrow at <strong>{{ .NotificationTime }}</strong>.
            Get ready for the latest threats, vulnerabilities, and security insights!
        </div>
        <p><strong>Pro Tip:</strong> Add our email to your contacts to ensure you never miss a critical security update!</p>
        <div class="footer">
            <p><strong>Stay Safe, Stay Informed!</strong></p>
            <p>— Your Cyber News Agent Team 🤖</p>
            <p style="font-size: 12px; color: #999;">You can unsubscribe anytime by visiting our dashboard or replying to this email.</p>
        </div>
    </div>
</body>
</html>
`))
